// Package guard flips the runtime into test mode before any package main
// style side effects run. Import it for side effect from tests that touch
// wiring code.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BOTICA_TEST_MODE") == "" {
			_ = os.Setenv("BOTICA_TEST_MODE", "1")
		}
	})
}
