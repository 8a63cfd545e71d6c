// Package testing switches the process into test mode when imported by a
// test binary. Binaries check app.InTestMode before touching Postgres or Redis.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testEnv = map[string]string{
	"LEDGER_TEST_MODE": "1",
	"LOG_LEVEL":        "error",
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range testEnv {
			if _, ok := os.LookupEnv(key); ok && key != "LEDGER_TEST_MODE" {
				continue
			}
			_ = os.Setenv(key, value)
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
