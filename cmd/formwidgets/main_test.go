package main

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderCommand_DemoForm(t *testing.T) {
	out, _, err := execute(t, "render")
	require.NoError(t, err)

	assert.Contains(t, out, `id="shipping"`)
	assert.Contains(t, out, `<select id="root_size" name="root_size"`)
	assert.Contains(t, out, `data-autocomplete-type="timezones"`)
	assert.Contains(t, out, "Extras")
}

func TestRenderCommand_FormFileToOutput(t *testing.T) {
	dir := t.TempDir()
	form := writeFile(t, dir, "contact.yaml", `
title: Contact
fields:
  - name: channel
    label: Channel
    schema:
      type: string
      enum: [email, phone]
      enumNames: [E-mail, Phone]
  - name: handle
    label: Handle
    schema:
      type: string
`)
	values := writeFile(t, dir, "values.yaml", "channel: phone\nhandle: ada\n")
	output := filepath.Join(dir, "contact.html")

	_, _, err := execute(t, "render", "--form", form, "--values", values, "--output", output)
	require.NoError(t, err)

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), `id="contact"`)
	assert.Contains(t, string(html), `<option value="1" selected>Phone</option>`)
	assert.Contains(t, string(html), `value="ada"`)
}

func TestRenderCommand_MissingForm(t *testing.T) {
	_, _, err := execute(t, "render", "--form", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read form")
}

func TestLoadForm_OpenAPIRequiresComponent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "api.yaml", "openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")

	_, err := loadForm(context.Background(), path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--component")
}

func TestLoadTheme(t *testing.T) {
	path := writeFile(t, t.TempDir(), "acme.yaml", `
name: acme
version: 1.0.0
tokens:
  brand: "#123456"
assets:
  prefix: /assets/acme
  files:
    stylesheet: theme.css
variants:
  dark:
    tokens:
      brand: "#000000"
`)

	cfg, err := loadTheme(path, "dark")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "acme", cfg.Theme)
	assert.Equal(t, "dark", cfg.Variant)
	assert.Equal(t, "#000000", cfg.Tokens["brand"])

	_, err = loadTheme(path, "neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no variant "neon"`)

	cfg, err = loadTheme("", "")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestBuildFetcher_RoutesTimezones(t *testing.T) {
	fetcher, cleanup, err := buildFetcher(sourceFlags{}, nil)
	require.NoError(t, err)
	defer cleanup()

	results, err := fetcher.Fetch(context.Background(), "timezones", "amsterdam")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Europe/Amsterdam", results[0].Value)

	_, err = fetcher.Fetch(context.Background(), "cities", "am")
	assert.ErrorIs(t, err, suggest.ErrUnknownKind)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fetcher, cleanup, err := buildFetcher(sourceFlags{}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	handler, err := newServer(serverConfig{
		form:     demoForm(),
		fetcher:  fetcher,
		registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_ShowsFormAndAssets(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `method="post"`)
	assert.Contains(t, string(body), `/formwidgets/autocomplete.js`)

	res, err = http.Get(srv.URL + "/formwidgets/autocomplete.js")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestServer_OptionsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/options/timezones?q=amsterdam")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotEmpty(t, payload.Data)
	assert.Equal(t, "Europe/Amsterdam", payload.Data[0].Value)

	res, err = http.Get(srv.URL + "/api/options/planets?q=ma")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_SubmitResolvesSelectIndices(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.PostForm(srv.URL+"/", url.Values{
		"root_size":     {"2"},
		"root_timezone": {"Europe/Amsterdam"},
		"root_notes":    {"  ring twice "},
		"root_meta":     {`{"gift":true}`},
	})
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, map[string]any{
		"size":     "l",
		"timezone": "Europe/Amsterdam",
		"notes":    "ring twice",
		"meta":     map[string]any{"gift": true},
	}, payload.Data)
}

func TestServer_SubmitMapsAutocompleteLabelsToValues(t *testing.T) {
	form := model.Form{
		ID:     "sizes",
		Schema: model.Schema{Type: model.FieldTypeObject},
		Fields: []model.Field{{
			Name: "size",
			Schema: model.Schema{
				Type:      model.FieldTypeString,
				Enum:      []any{"s", "m"},
				EnumNames: []string{"Small", "Medium"},
			},
			UI: map[string]any{"ui:widget": "autocomplete"},
		}},
	}
	handler, err := newServer(serverConfig{form: form, values: map[string]any{"size": "m"}})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	match := regexp.MustCompile(`id="root_size" name="root_size" value="([^"]*)"`).FindStringSubmatch(string(body))
	require.Len(t, match, 2, "autocomplete input missing: %s", body)
	shown := html.UnescapeString(match[1])
	assert.Equal(t, "m (Medium)", shown)

	for _, posted := range []string{shown, "m", "medium"} {
		res, err = http.PostForm(srv.URL+"/", url.Values{"root_size": {posted}})
		require.NoError(t, err)
		var payload struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
		res.Body.Close()
		assert.Equal(t, map[string]any{"size": "m"}, payload.Data, "posted %q", posted)
	}

	res, err = http.PostForm(srv.URL+"/", url.Values{"root_size": {"Large"}})
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, string(body), "is not one of the offered options")
}

func TestServer_SubmitRejectsMissingRequired(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.PostForm(srv.URL+"/", url.Values{
		"root_size":  {"-1"},
		"root_notes": {"hello"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.True(t, strings.Contains(string(body), `aria-invalid="true"`))
	assert.Contains(t, string(body), `value="hello"`)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
