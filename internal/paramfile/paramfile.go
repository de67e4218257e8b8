// Package paramfile reads and writes curve parameter files in the
// line-oriented "key: value" layout used by the search tools.
package paramfile

import (
	"bufio"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

// fieldOrder fixes the on-disk line order. Read accepts any order but
// requires every key exactly once.
var fieldOrder = []string{"p", "a", "b", "G_x", "G_y", "n", "h"}

// Write stores the parameters at path, one "key: value" line per field,
// values in decimal.
func Write(path string, params weierstrass.Parameters) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "paramfile: create")
	}
	defer file.Close()

	values := fieldValues(params)
	w := bufio.NewWriter(file)
	for _, key := range fieldOrder {
		if _, err := fmt.Fprintf(w, "%s: %s\n", key, values[key]); err != nil {
			return errors.Wrap(err, "paramfile: write")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "paramfile: flush")
	}
	return nil
}

// Read loads parameters from path. Blank lines and lines starting with '#'
// are skipped; every field must be present.
func Read(path string) (weierstrass.Parameters, error) {
	var params weierstrass.Parameters

	file, err := os.Open(path)
	if err != nil {
		return params, errors.Wrap(err, "paramfile: open")
	}
	defer file.Close()

	values := make(map[string]*big.Int, len(fieldOrder))
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, raw, ok := strings.Cut(text, ":")
		if !ok {
			return params, errors.Errorf("paramfile: line %d: missing ':' separator", line)
		}
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)

		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return params, errors.Errorf("paramfile: line %d: invalid value for %q: %s", line, key, raw)
		}
		if _, dup := values[key]; dup {
			return params, errors.Errorf("paramfile: line %d: duplicate key %q", line, key)
		}
		values[key] = v
	}
	if err := scanner.Err(); err != nil {
		return params, errors.Wrap(err, "paramfile: read")
	}

	for _, key := range fieldOrder {
		if _, ok := values[key]; !ok {
			return params, errors.Errorf("paramfile: missing key %q", key)
		}
	}

	params = weierstrass.Parameters{
		P: values["p"],
		A: values["a"],
		B: values["b"],
		G: &weierstrass.Point{X: values["G_x"], Y: values["G_y"]},
		N: values["n"],
		H: values["h"],
	}
	return params, nil
}

func fieldValues(params weierstrass.Parameters) map[string]string {
	return map[string]string{
		"p":   params.P.String(),
		"a":   params.A.String(),
		"b":   params.B.String(),
		"G_x": params.G.X.String(),
		"G_y": params.G.Y.String(),
		"n":   params.N.String(),
		"h":   params.H.String(),
	}
}
