package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	callsMu sync.Mutex
	calls   = make(map[string]int)
)

// ValidateSnapshot compares the JSON encoding of obj against testdata/<func>-<n>.json
// The file is written, and the check passes, the first time it is missing.
// depth is the number of helper frames between the test and this call
func ValidateSnapshot(t *testing.T, obj interface{}, depth int, msgAndArgs ...interface{}) {
	t.Helper()

	filename := snapshotFile(1 + depth)

	actual, err := json.MarshalIndent(obj, "", "  ")
	require.NoError(t, err)

	expects, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		require.NoError(t, write(filename, actual))
		return
	}
	require.NoError(t, err)

	if !assert.Equal(t, strings.TrimSpace(string(expects)), strings.TrimSpace(string(actual)), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
	}
}

func snapshotFile(skip int) string {
	pc, _, _, _ := runtime.Caller(skip + 1)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	callsMu.Lock()
	call := calls[funcName]
	calls[funcName] = call + 1
	callsMu.Unlock()

	return filepath.Join("testdata", fmt.Sprintf("%s-%d.json", funcName, call))
}

func write(filename string, data []byte) error {
	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	return os.WriteFile(filename, append(data, '\n'), 0644)
}
