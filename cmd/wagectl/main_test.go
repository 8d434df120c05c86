package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagedash/internal/views"
)

// writeFixture lays out four small UTF-8 datasets and a config pointing at
// them. The wage files default to Shift_JIS, so the encoding is overridden.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"national.csv": "集計年,年齢,一人当たり賃金（万円）,所定内給与額（万円）,年間賞与その他特別給与額（万円）\n" +
			"2019,年齢計,500,300,80\n2018,年齢計,480,290,75\n2019,20～24歳,250,200,20\n",
		"regional.csv": "集計年,都道府県名,年齢,一人当たり賃金（万円）\n" +
			"2019,東京都,年齢計,500\n2019,大阪府,年齢計,400\n2018,東京都,年齢計,530\n2018,大阪府,年齢計,390\n",
		"industry.csv": "集計年,産業大分類名,年齢,一人当たり賃金（万円）,所定内給与額（万円）,年間賞与その他特別給与額（万円）\n" +
			"2019,建設業,年齢計,100,80,10\n2019,金融業,年齢計,300,250,60\n",
		"geo.csv": "pref_name,lon,lat\n東京都,139.69,35.69\n大阪府,135.50,34.69\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	cfg := "datasets:\n" +
		"  national: {path: " + filepath.Join(dir, "national.csv") + ", encoding: utf-8}\n" +
		"  regional: {path: " + filepath.Join(dir, "regional.csv") + ", encoding: utf-8}\n" +
		"  industry: {path: " + filepath.Join(dir, "industry.csv") + ", encoding: utf-8}\n" +
		"  geo: {path: " + filepath.Join(dir, "geo.csv") + "}\n" +
		"logging: {level: error}\n"
	path := filepath.Join(dir, "wagedash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestRun_TrendText(t *testing.T) {
	cfg := writeFixture(t)
	var stdout, stderr bytes.Buffer

	err := run([]string{"-config", cfg, "-view", "trend", "-region", "大阪府"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "全国_一人当たり賃金（万円）")
	assert.Contains(t, lines[2], "2018")
	assert.Contains(t, lines[2], "390")
}

func TestRun_IndustryJSON(t *testing.T) {
	cfg := writeFixture(t)
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-config", cfg, "-view", "industry", "-format", "json"}, &stdout, &stderr))

	var resp struct {
		View  views.Kind       `json:"view"`
		Range *views.AxisRange `json:"range"`
		Rows  [][]any          `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, views.KindIndustry, resp.View)
	assert.Equal(t, &views.AxisRange{Min: 0, Max: 350}, resp.Range)
	assert.Len(t, resp.Rows, 2)
}

func TestRun_GeoCSV(t *testing.T) {
	cfg := writeFixture(t)
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-config", cfg, "-format", "csv"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "一人当たり賃金（相対値）")
	assert.Contains(t, stdout.String(), "2019,東京都,年齢計,500,139.69,35.69,1\n")
}

func TestRun_Errors(t *testing.T) {
	cfg := writeFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown view", args: []string{"-config", cfg, "-view", "pie"}},
		{name: "unknown format", args: []string{"-config", cfg, "-format", "xml"}},
		{name: "unknown metric", args: []string{"-config", cfg, "-view", "industry", "-metric", "tips"}},
		{name: "missing config", args: []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(tt.args, &stdout, &stderr))
		})
	}
}
