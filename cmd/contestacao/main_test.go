package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const savedResponse = "```json\n" + `{"autor": {"nome": "Fulano de Tal"}, "reu": {"nome": "Brazino777 Ltda"}, "pedidos": []}` + "\n```\n" + `
DO MÉRITO
Não há qualquer dano a ser indenizado ao autor nos presentes autos.
DOS PEDIDOS
a) Improcedência total dos pedidos
`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := runCLI(t, savedResponse, "parse", "-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var parsed struct {
		Data        map[string]interface{} `json:"data"`
		Contestacao string                 `json:"contestacao"`
		Secoes      []struct {
			Title       string `json:"title"`
			Subsections []struct {
				Number string `json:"number"`
			} `json:"subsections"`
		} `json:"secoes"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if _, ok := parsed.Data["autor"]; !ok {
		t.Errorf("data missing autor")
	}
	if len(parsed.Secoes) != 2 || parsed.Secoes[1].Title != "DOS PEDIDOS" {
		t.Fatalf("sections: %+v", parsed.Secoes)
	}
	if len(parsed.Secoes[1].Subsections) != 1 || parsed.Secoes[1].Subsections[0].Number != "a)" {
		t.Errorf("subsections: %+v", parsed.Secoes[1].Subsections)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "resposta.txt")
	if err := os.WriteFile(input, []byte(savedResponse), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "render", input, "--format", "txt", "--out", "-", "--numero", "123-45", "--advogado", "MARIA SOUZA")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Processo n.º: 123-45", "Autor: Fulano de Tal", "MARIA SOUZA", "a) Improcedência total dos pedidos"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	docx := filepath.Join(dir, "out.docx")
	if _, err := runCLI(t, "", "render", input, "-o", docx); err != nil {
		t.Fatalf("render docx: %v", err)
	}
	data, err := os.ReadFile(docx)
	if err != nil || !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("docx not written: %v", err)
	}

	if _, err := runCLI(t, "", "render", input, "--format", "pdf"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRenderCommand_TooShort(t *testing.T) {
	if _, err := runCLI(t, "curto", "render", "-", "--out", "-"); err == nil {
		t.Error("a response without a contestation should fail")
	}
}
