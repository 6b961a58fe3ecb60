package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsintake/internal/model"
	"tmsintake/internal/registry"
)

func writeValues(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadValues(t *testing.T) {
	f, err := registry.Default().Lookup(model.FormContact)
	require.NoError(t, err)

	values, err := readValues(f, writeValues(t, `{"name":"Jane Doe","preferredDate":"2024-06-20","message":""}`))
	require.NoError(t, err)
	assert.Equal(t, model.Text("Jane Doe"), values["name"])
	assert.Equal(t, model.MustDate(2024, time.June, 20), values["preferredDate"])

	_, err = readValues(f, writeValues(t, `{"bogus":"x"}`))
	assert.ErrorContains(t, err, "bogus")

	_, err = readValues(f, writeValues(t, `not json`))
	assert.Error(t, err)
}

func TestCheckForms(t *testing.T) {
	cmd := checkFormsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "phq-9")
	assert.Contains(t, out.String(), "ok")
}
