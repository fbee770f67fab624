/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ldcmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hyperledger/aries-framework-go/component/log"
	spi "github.com/hyperledger/aries-framework-go/spi/log"
	"github.com/stretchr/testify/require"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/jsonld"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/embed"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/remote"
)

const (
	permanentResidentJSON = `{
  "@context": ["https://www.w3.org/2018/credentials/v1", "https://w3id.org/citizenship/v1"],
  "type": ["PermanentResident", "Person"],
  "givenName": "Marion",
  "familyName": "Mustermann"
}`

	extraContextURL  = "https://example.com/extra/v1"
	extraContextJSON = `{"@context": {"nickname": "https://example.com/extra#nickname"}}`
	nicknameJSON     = `{"@context": "https://example.com/extra/v1", "nickname": "Max"}`
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Cmd()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestCmdContents(t *testing.T) {
	cmd := Cmd()

	require.Equal(t, "ldobject", cmd.Use)
	require.Equal(t, "Build and process JSON-LD objects", cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	require.ElementsMatch(t, []string{"build", "nquads", "normalize", "validate", "contexts"}, names)

	for _, flag := range []string{
		logLevelFlagName, configFlagName, enableHTTPFlagName, enableHTTPSFlagName, contextStoreFlagName,
		contextStorePathFlagName, extraContextFlagName, contextProviderFlagName,
	} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}

	out, err := execute(t)
	require.NoError(t, err)
	require.Contains(t, out, "Usage:")
}

func TestBuildCmd(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		out, err := execute(t, "build",
			"--context", embed.CredentialsV1, "--context", embed.CitizenshipV1,
			"--type", "PermanentResident,Person",
			"--property", "givenName=Marion",
			"--property", "familyName=Mustermann",
		)
		require.NoError(t, err)
		require.Contains(t, out, `"givenName": "Marion"`)
		require.Contains(t, out, "dataset size: 4\n")
		require.Less(t, strings.Index(out, "givenName"), strings.Index(out, "familyName"))
	})

	t.Run("Credential with defaults", func(t *testing.T) {
		out, err := execute(t, "build", "--credential", "--default-contexts", "--default-types",
			"--id", "https://example.com/credentials/1",
			"--property", "issuer=did:example:issuer",
			"--property", `credentialSubject={"id":"did:example:subject"}`,
		)
		require.NoError(t, err)
		require.Contains(t, out, `"type": "VerifiableCredential"`)
		require.Contains(t, out, `"@context": "https://www.w3.org/2018/credentials/v1"`)
		require.Contains(t, out, `"id": "did:example:subject"`)
		require.Contains(t, out, "dataset size: 3\n")
	})

	t.Run("Invalid context", func(t *testing.T) {
		_, err := execute(t, "build", "--context", "relative/context")

		var validationErr *jsonld.ValidationError
		require.True(t, errors.As(err, &validationErr))
	})

	t.Run("Invalid property", func(t *testing.T) {
		_, err := execute(t, "build", "--property", "name")
		require.EqualError(t, err, "property must be in name=value format: name")
	})

	t.Run("Unknown context with network disabled", func(t *testing.T) {
		_, err := execute(t, "build", "--context", "https://example.com/unknown/v1", "--property", "a=b")
		require.ErrorContains(t, err, "https://example.com/unknown/v1")
	})
}

func TestParseProperties(t *testing.T) {
	properties, err := parseProperties([]string{"b=1", "a=text", `c={"x":true}`, "d=a=b"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c", "d"}, properties.Keys())

	b, _ := properties.Get("b")
	require.Equal(t, float64(1), b)

	a, _ := properties.Get("a")
	require.Equal(t, "text", a)

	c, _ := properties.Get("c")
	require.Equal(t, map[string]interface{}{"x": true}, c)

	d, _ := properties.Get("d")
	require.Equal(t, "a=b", d)
}

func TestNQuadsCmd(t *testing.T) {
	path := writeFile(t, "resident.json", permanentResidentJSON)

	out, err := execute(t, "nquads", path)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)

	_, err = execute(t, "nquads", filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "read JSON-LD document")

	_, err = execute(t, "nquads", writeFile(t, "invalid.json", "[]"))
	require.Error(t, err)

	_, err = execute(t, "nquads")
	require.Error(t, err)
}

func TestNormalizeCmd(t *testing.T) {
	path := writeFile(t, "resident.json", permanentResidentJSON)

	out, err := execute(t, "normalize", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "_:c14n0 <http://schema.org/familyName> \"Mustermann\" .\n"))

	rdfc, err := execute(t, "normalize", path, "--algorithm", "RDFC-1.0")
	require.NoError(t, err)
	require.Equal(t, out, rdfc)

	_, err = execute(t, "normalize", path, "--algorithm", "URGNA2012")
	require.ErrorIs(t, err, jsonld.ErrUnsupportedAlgorithm)
}

func TestValidateCmd(t *testing.T) {
	path := writeFile(t, "resident.json", permanentResidentJSON)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	require.Equal(t, path+": valid\n", out)

	_, err = execute(t, "validate", writeFile(t, "undefined.json", `{
		"@context": "https://www.w3.org/2018/credentials/v1",
		"type": "VerifiableCredential",
		"nickname": "Max"
	}`))

	var validationErr *jsonld.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestContextLoading(t *testing.T) {
	docPath := writeFile(t, "nickname.json", nicknameJSON)
	contextPath := writeFile(t, "extra.jsonld", extraContextJSON)

	t.Run("Extra context flag", func(t *testing.T) {
		out, err := execute(t, "nquads", docPath, "--extra-context", extraContextURL+"="+contextPath)
		require.NoError(t, err)
		require.Contains(t, out, `<https://example.com/extra#nickname> "Max"`)
	})

	t.Run("Extra context env", func(t *testing.T) {
		t.Setenv(extraContextEnvKey, extraContextURL+"="+contextPath)

		_, err := execute(t, "nquads", docPath)
		require.NoError(t, err)
	})

	t.Run("Invalid extra context", func(t *testing.T) {
		_, err := execute(t, "nquads", docPath, "--extra-context", extraContextURL)
		require.ErrorIs(t, err, errInvalidExtraContext)

		_, err = execute(t, "nquads", docPath, "--extra-context", extraContextURL+"=/missing/extra.jsonld")
		require.ErrorContains(t, err, "read extra context")
	})

	t.Run("SQLite context store", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "contexts.db")

		_, err := execute(t, "nquads", docPath, "--context-store", "sqlite", "--context-store-path", dbPath,
			"--extra-context", extraContextURL+"="+contextPath)
		require.NoError(t, err)

		// the context stays in the database
		_, err = execute(t, "nquads", docPath, "--context-store", "sqlite", "--context-store-path", dbPath)
		require.NoError(t, err)

		_, err = execute(t, "nquads", docPath, "--context-store", "sqlite")
		require.ErrorContains(t, err, extraContextURL)
	})

	t.Run("Unsupported context store", func(t *testing.T) {
		t.Setenv(contextStoreEnvKey, "leveldb")

		_, err := execute(t, "nquads", docPath)
		require.EqualError(t, err, "context store type not supported: leveldb")
	})

	t.Run("Remote context provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(remote.Response{Documents: []ldcontext.Document{
				{URL: extraContextURL, Content: []byte(extraContextJSON)},
			}}))
		}))
		defer srv.Close()

		_, err := execute(t, "nquads", docPath, "--context-provider-url", srv.URL)
		require.NoError(t, err)
	})

	t.Run("Remote context over HTTP", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/ld+json")
			_, err := w.Write([]byte(extraContextJSON))
			require.NoError(t, err)
		}))
		defer srv.Close()

		doc := writeFile(t, "remote.json", `{"@context": "`+srv.URL+`/extra/v1", "nickname": "Max"}`)

		_, err := execute(t, "nquads", doc)
		require.Error(t, err)

		_, err = execute(t, "nquads", doc, "--enable-http", "true")
		require.NoError(t, err)

		_, err = execute(t, "nquads", doc, "--enable-http", "maybe")
		require.ErrorContains(t, err, "invalid value for enable-http")
	})
}

func TestContextsCmd(t *testing.T) {
	docPath := writeFile(t, "nickname.json", nicknameJSON)
	contextPath := writeFile(t, "extra.jsonld", extraContextJSON)
	dbPath := filepath.Join(t.TempDir(), "contexts.db")
	storeFlags := []string{"--context-store", "sqlite", "--context-store-path", dbPath}

	run := func(t *testing.T, args ...string) (string, error) {
		t.Helper()

		return execute(t, append(args, storeFlags...)...)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(remote.Response{Documents: []ldcontext.Document{
			{URL: extraContextURL, Content: []byte(extraContextJSON)},
		}}))
	}))
	defer srv.Close()

	var saved providerID

	t.Run("Add provider", func(t *testing.T) {
		out, err := run(t, "contexts", "add-provider", srv.URL)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &saved))
		require.NotEmpty(t, saved.ID)

		out, err = run(t, "contexts", "add-provider", srv.URL)
		require.NoError(t, err)
		require.Contains(t, out, saved.ID)
	})

	t.Run("Provider and documents survive between runs", func(t *testing.T) {
		out, err := run(t, "contexts", "list")
		require.NoError(t, err)

		var resp providersResponse

		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Providers, 1)
		require.Equal(t, saved.ID, resp.Providers[0].ID)
		require.Equal(t, srv.URL, resp.Providers[0].Endpoint)

		out, err = run(t, "nquads", docPath)
		require.NoError(t, err)
		require.Contains(t, out, `<https://example.com/extra#nickname> "Max"`)
	})

	t.Run("Refresh", func(t *testing.T) {
		_, err := run(t, "contexts", "refresh")
		require.NoError(t, err)

		_, err = run(t, "contexts", "refresh", saved.ID)
		require.NoError(t, err)

		_, err = run(t, "contexts", "refresh", "unknown")
		require.ErrorContains(t, err, "look up provider unknown")
	})

	t.Run("Delete provider", func(t *testing.T) {
		_, err := run(t, "contexts", "delete", saved.ID)
		require.NoError(t, err)

		out, err := run(t, "contexts", "list")
		require.NoError(t, err)
		require.NotContains(t, out, saved.ID)

		_, err = run(t, "nquads", docPath)
		require.ErrorContains(t, err, extraContextURL)
	})

	t.Run("Add documents from files", func(t *testing.T) {
		_, err := run(t, "contexts", "add", extraContextURL+"="+contextPath)
		require.NoError(t, err)

		_, err = run(t, "nquads", docPath)
		require.NoError(t, err)

		_, err = run(t, "contexts", "add", extraContextURL)
		require.ErrorIs(t, err, errInvalidExtraContext)

		_, err = run(t, "contexts", "add", extraContextURL+"=/missing/extra.jsonld")
		require.ErrorContains(t, err, "read extra context")
	})

	t.Run("Unreachable provider", func(t *testing.T) {
		_, err := run(t, "contexts", "add-provider", "http://127.0.0.1:0/contexts")
		require.ErrorContains(t, err, "download provider contexts")
	})

	t.Run("In-memory store forgets providers", func(t *testing.T) {
		_, err := execute(t, "contexts", "add-provider", srv.URL)
		require.NoError(t, err)

		out, err := execute(t, "contexts", "list")
		require.NoError(t, err)
		require.NotContains(t, out, srv.URL)
	})
}

func TestConfigFile(t *testing.T) {
	contextPath := writeFile(t, "extra.jsonld", extraContextJSON)
	docPath := writeFile(t, "nickname.json", nicknameJSON)

	config := writeFile(t, "config.yaml", `
logLevel: WARNING
network:
  https: true
contextStore:
  type: sqlite
  path: `+filepath.Join(t.TempDir(), "contexts.db")+`
extraContexts:
  - url: `+extraContextURL+`
    path: `+contextPath+`
`)

	t.Run("Parameters", func(t *testing.T) {
		cmd := Cmd()
		require.NoError(t, cmd.ParseFlags([]string{"--" + configFlagName, config, "--" + enableHTTPFlagName, "true"}))

		params, err := getParameters(cmd)
		require.NoError(t, err)
		require.Equal(t, "WARNING", params.logLevel)
		require.True(t, params.network.HTTPS)
		require.True(t, params.network.HTTP)
		require.False(t, params.network.File)
		require.Equal(t, contextStoreSQLiteOption, params.storeType)
		require.Equal(t, []extraContext{{URL: extraContextURL, Path: contextPath}}, params.extraContexts)
	})

	t.Run("Flags override file", func(t *testing.T) {
		cmd := Cmd()
		require.NoError(t, cmd.ParseFlags([]string{
			"--" + configFlagName, config,
			"--" + contextStoreFlagName, contextStoreMemOption,
			"--" + logLevelFlagName, "ERROR",
		}))

		params, err := getParameters(cmd)
		require.NoError(t, err)
		require.Equal(t, contextStoreMemOption, params.storeType)
		require.Equal(t, "ERROR", params.logLevel)
	})

	t.Run("Run with file", func(t *testing.T) {
		_, err := execute(t, "nquads", docPath, "--config", config)
		require.NoError(t, err)
		require.Equal(t, spi.WARNING, log.GetLevel(""))
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := execute(t, "nquads", docPath, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "read config file")
	})

	t.Run("Invalid file", func(t *testing.T) {
		_, err := execute(t, "nquads", docPath, "--config", writeFile(t, "invalid.yaml", "network: [1"))
		require.ErrorContains(t, err, "parse config file")
	})
}

func TestLogLevel(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, setLogLevel("DEBUG"))
		require.Equal(t, spi.DEBUG, log.GetLevel(""))

		require.NoError(t, setLogLevel("INFO"))
		require.Equal(t, spi.INFO, log.GetLevel(""))

		require.NoError(t, setLogLevel(""))
		require.Equal(t, spi.INFO, log.GetLevel(""))
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := execute(t, "--log-level", "INVALID")
		require.ErrorContains(t, err, "failed to parse log level")
	})

	t.Run("Env", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "ERROR")

		_, err := execute(t)
		require.NoError(t, err)
		require.Equal(t, spi.ERROR, log.GetLevel(""))

		require.NoError(t, setLogLevel("INFO"))
	})
}

func TestGetUserSetVar(t *testing.T) {
	cmd := Cmd()

	_, err := getUserSetVar(cmd, contextStoreFlagName, contextStoreEnvKey, false)
	require.EqualError(t, err, "Neither context-store (command line flag) nor LDOBJECT_CONTEXT_STORE"+
		" (environment variable) have been set.")

	_, err = getUserSetVars(cmd, extraContextFlagName, extraContextEnvKey, false)
	require.Error(t, err)

	t.Setenv(contextProviderEnvKey, "https://a.example.com,https://b.example.com")

	values, err := getUserSetVars(cmd, contextProviderFlagName, contextProviderEnvKey, false)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, values)
}
