// Package debug gates verbose tracing behind environment variables so
// a misbehaving server can be inspected without a config round-trip.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Parse    bool
	Schema   bool
	Complete bool
	Rpc      bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("CFNLS_DEBUG_PARSE")
	d.Schema = boolEnv("CFNLS_DEBUG_SCHEMA")
	d.Complete = boolEnv("CFNLS_DEBUG_COMPLETE")
	d.Rpc = boolEnv("CFNLS_DEBUG_RPC")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Schema() bool {
	return d.Schema
}
func Complete() bool {
	return d.Complete
}
func Rpc() bool {
	return d.Rpc
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
