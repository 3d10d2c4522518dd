package explorer

import (
	"fmt"
	"os"

	"github.com/tendermint/explorer-harness/config"
	"github.com/tendermint/explorer-harness/libs/log"
	tmos "github.com/tendermint/explorer-harness/libs/os"
)

// ExpectedSchemaPath is the checked-in explorer schema, relative to the
// repository root.
var ExpectedSchemaPath = config.DefaultExpectedSchemaPath

// CompareSchema compares the schema dumped by an explorer at actual against
// ExpectedSchemaPath. See CompareSchemaWith.
func CompareSchema(logger log.Logger, actual string) (bool, error) {
	return CompareSchemaWith(logger, actual, ExpectedSchemaPath)
}

// CompareSchemaWith compares the files at actual and expected byte for byte.
// On any difference, a missing expected file included, expected is replaced
// with actual and a warning is logged. It reports whether the schemas
// differed. A drift is not an error.
func CompareSchemaWith(logger log.Logger, actual, expected string) (bool, error) {
	same, err := tmos.SameContent(actual, expected)
	if err != nil {
		return false, fmt.Errorf("comparing schema %s with %s: %w", actual, expected, err)
	}
	if same {
		return false, nil
	}

	contents, err := os.ReadFile(actual)
	if err != nil {
		return true, fmt.Errorf("reading schema %s: %w", actual, err)
	}
	if err := tmos.WriteFileAtomic(expected, contents, 0644); err != nil {
		return true, fmt.Errorf("updating schema %s: %w", expected, err)
	}
	logger.Warn("explorer schema changed, commit the updated file", "expected", expected, "actual", actual)
	return true, nil
}
