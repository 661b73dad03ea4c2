package tests

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	_ = os.Unsetenv("SCAFFOLD_STAGE")
	os.Exit(m.Run())
}
