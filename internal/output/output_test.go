package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"deskbridge/internal/types"
)

func TestPrintJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	res := types.Success("", types.PathClassification{Files: []string{`C:\a&b.txt`}, Folders: []string{}})
	if err := PrintJSON(&buf, res, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	if !strings.Contains(out, `a&b.txt`) {
		t.Errorf("HTML characters should not be escaped: %s", out)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["code"] != float64(200) {
		t.Errorf("code = %v", decoded["code"])
	}
}

func TestPrintJSON_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, types.Failure("boom", nil), true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"code\": 500") {
		t.Errorf("expected indented output, got:\n%s", buf.String())
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	res := types.Success("", types.PathClassification{Files: []string{"/tmp/a"}, Folders: []string{"/tmp"}})
	if err := Print(&buf, FormatYAML, res, false); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Code int `yaml:"code"`
		Data struct {
			Files   []string `yaml:"files"`
			Folders []string `yaml:"folders"`
		} `yaml:"data"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if decoded.Code != 200 || decoded.Data.Files[0] != "/tmp/a" || decoded.Data.Folders[0] != "/tmp" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "yaml"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
