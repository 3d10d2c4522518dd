package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/creachadair/tomledit/transform"

	tmos "github.com/tendermint/explorer-harness/libs/os"
)

// SetValue sets the dotted key (e.g. "explorer.logs-dir") of the TOML file at
// path to value, a TOML literal such as `"/tmp/logs"`, `5` or `true`.
// Comments and layout of the file are preserved. A missing key is added to
// its table. The result must still load with LoadFile.
func SetValue(path, key, value string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	doc, err := tomledit.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	v, err := parser.ParseValue(value)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", value, err)
	}

	name := parser.Key(strings.Split(key, "."))
	if e := doc.First(name...); e != nil {
		if !e.IsMapping() {
			return fmt.Errorf("%s is a table, not a value", key)
		}
		e.Value.X = v.X
	} else {
		table, leaf := name[:len(name)-1], name[len(name)-1:]
		err := transform.EnsureKey(table, &parser.KeyValue{Name: leaf, Value: v})(context.Background(), doc)
		if err != nil {
			return fmt.Errorf("adding %s: %w", key, err)
		}
	}

	var buf bytes.Buffer
	if err := tomledit.Format(&buf, doc); err != nil {
		return err
	}

	// reject edits that would leave a file LoadFile can't read
	tmp, err := os.CreateTemp("", "config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	cfg, err := LoadFile(tmp.Name())
	if err != nil {
		return err
	}
	if err := cfg.ValidateBasic(); err != nil {
		return fmt.Errorf("%s = %s: %w", key, value, err)
	}

	return tmos.WriteFileAtomic(path, buf.Bytes(), 0644)
}
