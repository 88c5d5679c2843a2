package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	// chdir to the module root so tests resolve logs/ and templates the same way
	// the server binary does
	//
	//   in some_test.go,
	//   import (
	//     _ "liyu1981.xyz/water-quality-dashboard/pkg/testing"
	//   )

	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
}
