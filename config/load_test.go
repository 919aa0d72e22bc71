/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	f, err := config.LoadFile("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultUnstableThreshold, f.UnstableThreshold)
	require.Equal(t, "sync", f.MapKind)
	require.Equal(t, "info", f.Log.Level)
	require.Equal(t, "text", f.Log.Format)

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultUnstableThreshold, cfg.UnstableThreshold)
	require.Equal(t, apis.MapSync, cfg.MapKind)
	require.NotNil(t, cfg.Logger)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
unstable_threshold: 3
map_kind: snapshot
log:
  level: debug
  format: json
`)

	f, err := config.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, f.UnstableThreshold)
	require.Equal(t, "snapshot", f.MapKind)
	require.Equal(t, "debug", f.Log.Level)
	require.Equal(t, "json", f.Log.Format)

	cfg, err := f.Config()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.UnstableThreshold)
	require.Equal(t, apis.MapSnapshot, cfg.MapKind)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "unstable_threshold: 3\nmap_kind: snapshot\n")
	t.Setenv("ROLX_UNSTABLE_THRESHOLD", "5")
	t.Setenv("ROLX_MAP_KIND", "sync")
	t.Setenv("ROLX_LOG_LEVEL", "warn")

	f, err := config.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 5, f.UnstableThreshold)
	require.Equal(t, "sync", f.MapKind)
	require.Equal(t, "warn", f.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"threshold": "unstable_threshold: 0\n",
		"map kind":  "map_kind: btree\n",
		"level":     "log:\n  level: loud\n",
		"format":    "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, body))
			require.Error(t, err)
		})
	}
}
