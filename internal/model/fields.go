package model

// Fields are the structured values extracted from an assembled payload.
// Amounts are plain decimals (no currency symbol); dates are YYYY-MM-DD.
type Fields struct {
	ProcessoOrigem string  `json:"processo_origem"`
	RequerenteCaps string  `json:"requerente_caps"`
	NumeroOrdem    *string `json:"numero_ordem"`
	Vara           *string `json:"vara,omitempty"`

	CredorNome    *string `json:"credor_nome,omitempty"`
	CredorCPFCNPJ *string `json:"credor_cpf_cnpj,omitempty"`
	DevedorEnte   *string `json:"devedor_ente,omitempty"`
	AdvogadoNome  *string `json:"advogado_nome,omitempty"`
	AdvogadoOAB   *string `json:"advogado_oab,omitempty"`

	Banco     *string `json:"banco,omitempty"`
	Agencia   *string `json:"agencia,omitempty"`
	Conta     *string `json:"conta,omitempty"`
	ContaTipo *string `json:"conta_tipo,omitempty"`

	ValorPrincipalLiquido *float64 `json:"valor_principal_liquido"`
	ValorPrincipalBruto   *float64 `json:"valor_principal_bruto"`
	JurosMoratorios       *float64 `json:"juros_moratorios"`
	ValorTotalRequisitado *float64 `json:"valor_total_requisitado"`
	ContribIPREM          *float64 `json:"contrib_previdenciaria_iprem,omitempty"`
	ContribHSPM           *float64 `json:"contrib_previdenciaria_hspm,omitempty"`

	DataNascimento      *string `json:"data_nascimento,omitempty"`
	DataBaseAtualizacao *string `json:"data_base_atualizacao,omitempty"`
	DataAjuizamento     *string `json:"data_ajuizamento,omitempty"`
	DataTransitoJulgado *string `json:"data_transito_julgado,omitempty"`

	Idoso       *bool `json:"idoso,omitempty"`
	DoencaGrave *bool `json:"doenca_grave,omitempty"`
	PCD         *bool `json:"pcd,omitempty"`

	Rejeitado         *bool   `json:"rejeitado,omitempty"`
	MotivoRejeicao    *string `json:"motivo_rejeicao,omitempty"`
	Anomalia          *bool   `json:"anomalia,omitempty"`
	DescricaoAnomalia *string `json:"descricao_anomalia,omitempty"`
	Observacoes       *string `json:"observacoes,omitempty"`
}
