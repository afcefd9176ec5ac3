package debug

import "testing"

func TestBoolEnv(t *testing.T) {
	const key = "CFNLS_DEBUG_TESTFLAG"
	if boolEnv(key) {
		t.Errorf("unset %s should be off", key)
	}
	t.Setenv(key, "1")
	if !boolEnv(key) {
		t.Errorf("%s=1 should be on", key)
	}
	t.Setenv(key, "not-a-bool")
	if boolEnv(key) {
		t.Errorf("unparseable %s should be off", key)
	}
}
