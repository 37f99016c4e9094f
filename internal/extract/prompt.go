package extract

import (
	"strings"
	"unicode/utf8"
)

const systemPrompt = `Você é um assistente especializado em extrair dados estruturados de Ofícios Requisitórios do Tribunal de Justiça de São Paulo. Retorne apenas um objeto JSON válido, FLAT (todos os campos no nível raiz, sem objetos aninhados).

=== CAMPOS OBRIGATÓRIOS ===
- processo_origem: número CNJ do processo (0000000-00.0000.0.00.0000)
- requerente_caps: nome do requerente TODO EM MAIÚSCULAS
- numero_ordem: número de ordem do RPV/precatório no formato XXX/AAAA, ou null
  * CORRETO: "644/2015", "2913/2023"
  * ERRADO: "0181657-92.2021.8.26.0500" (isso é o número do PROCESSO)
  * Procure no título "OFÍCIO REQUISITÓRIO Nº XXX/AAAA" ou na seção PROCESSAMENTO ("Nº de Ordem: XXX/AAAA")
- valor_principal_liquido, valor_principal_bruto, juros_moratorios, valor_total_requisitado: números decimais

=== CAMPOS OPCIONAIS ===
- banco (apenas números), agencia, conta (com dígito), conta_tipo (corrente/poupança)
- contrib_previdenciaria_iprem (INST.PREV. ou IPREMSAOPAULO), contrib_previdenciaria_hspm (ASSIST.MÉD. ou HSPMSAOPAULO)
- data_nascimento, data_base_atualizacao, data_ajuizamento, data_transito_julgado (AAAA-MM-DD)
- idoso, doenca_grave, pcd (true/false)
- vara, credor_nome, credor_cpf_cnpj, devedor_ente, advogado_nome, advogado_oab
- rejeitado (true/false), motivo_rejeicao, anomalia (true/false), descricao_anomalia

=== REGRAS ===
1. Campos não encontrados = null. Não invente valores.
2. Valores numéricos sem R$ e sem pontos de milhar, ponto como separador decimal.
3. Datas no formato AAAA-MM-DD.
4. numero_ordem é diferente de processo_origem.

EXEMPLO:
{"processo_origem": "0035938-67.2018.8.26.0053", "requerente_caps": "REGINA APARECIDA NARDES GARCIA DIAS", "numero_ordem": "2913/2023", "valor_principal_liquido": 17753.80, "valor_principal_bruto": 37993.13, "juros_moratorios": 20239.33, "valor_total_requisitado": 37993.13, "banco": "341", "agencia": "3740", "conta": "00000001341-6", "vara": "1ª VARA DE FAZENDA PÚBLICA", "data_base_atualizacao": "2020-02-29", "idoso": false}`

// shortPayloadRunes marks payloads small enough to suggest an anomalous
// document.
const shortPayloadRunes = 500

func buildPrompt(req Request) string {
	var sb strings.Builder

	if req.Rejected {
		sb.WriteString("ATENÇÃO: este ofício foi REJEITADO pelo DEPRE. Extraia apenas os dados disponíveis, use null para o resto e marque rejeitado=true.\n\n")
	}
	if utf8.RuneCountInString(req.Payload) < shortPayloadRunes {
		sb.WriteString("ATENÇÃO: documento muito curto ou com formato anômalo. Se não seguir o padrão esperado, marque anomalia=true e descreva o problema em descricao_anomalia.\n\n")
	}
	if !req.HasAnnex {
		sb.WriteString("O ANEXO II não foi localizado; dados bancários podem estar ausentes.\n")
	}
	if !req.HasStatus && req.TitleOrderNumber == "" {
		sb.WriteString("A página de PROCESSAMENTO não foi localizada.\n")
	}

	sb.WriteString("\nDOCUMENTO:\n")
	sb.WriteString(req.Payload)
	sb.WriteString("\n\nRetorne APENAS o JSON.")
	return sb.String()
}
