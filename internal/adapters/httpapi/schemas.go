package httpapi

import (
	"bytes"
	"embed"
	"fmt"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type schemaValidator interface {
	Validate(v any) error
}

var (
	sendMailSchema     = mustCompileSchema("send_mail.json")
	createAPIKeySchema = mustCompileSchema("create_api_key.json")
)

func mustCompileSchema(name string) *santhosh.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("read embedded schema %s: %v", name, err))
	}

	compiler := santhosh.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("add schema resource %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}
