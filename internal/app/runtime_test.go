package app

import "testing"

func TestRefreshTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatalf("expected test mode aktif setelah refresh")
	}

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	if InTestMode() {
		t.Fatalf("expected test mode nonaktif setelah refresh")
	}
}
