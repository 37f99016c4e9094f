package extract

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	amountFields = []string{
		"valor_principal_liquido",
		"valor_principal_bruto",
		"juros_moratorios",
		"valor_total_requisitado",
		"contrib_previdenciaria_iprem",
		"contrib_previdenciaria_hspm",
	}
	dateFields = []string{
		"data_nascimento",
		"data_base_atualizacao",
		"data_ajuizamento",
		"data_transito_julgado",
	}
	flagFields = []string{"idoso", "doenca_grave", "pcd", "rejeitado", "anomalia"}
	textFields = []string{
		"vara", "credor_nome", "credor_cpf_cnpj", "devedor_ente",
		"advogado_nome", "advogado_oab", "banco", "agencia", "conta",
		"conta_tipo", "motivo_rejeicao", "descricao_anomalia", "observacoes",
	}
)

func nullable(typ string, extra map[string]any) map[string]any {
	s := map[string]any{"type": []any{typ, "null"}}
	for k, v := range extra {
		s[k] = v
	}
	return s
}

// fieldsSchema describes the flat object the model must return after
// normalisation.
func fieldsSchema() map[string]any {
	props := map[string]any{
		"processo_origem": map[string]any{"type": "string", "minLength": 1, "maxLength": 30},
		"requerente_caps": map[string]any{"type": "string", "minLength": 1},
		"numero_ordem":    nullable("string", map[string]any{"pattern": `^\d{1,6}/\d{4}$`}),
	}
	for _, f := range amountFields {
		props[f] = nullable("number", map[string]any{"minimum": 0})
	}
	for _, f := range dateFields {
		props[f] = nullable("string", map[string]any{"pattern": `^\d{4}-\d{2}-\d{2}$`})
	}
	for _, f := range flagFields {
		props[f] = nullable("boolean", nil)
	}
	for _, f := range textFields {
		props[f] = nullable("string", nil)
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"required":   []any{"processo_origem", "requerente_caps", "numero_ordem"},
		"properties": props,
	}
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, eris.Wrap(err, "extract: marshal schema")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fields.json", bytes.NewReader(b)); err != nil {
		return nil, eris.Wrap(err, "extract: add schema")
	}
	schema, err := compiler.Compile("fields.json")
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile schema")
	}
	return schema, nil
}
