// Package nymu implementa o adaptador para a API de emissão de notas fiscais do Nymu.
//
// Este pacote implementa:
//   - Requisições JSON com interceptors de headers (token, request id)
//   - Normalização de erros da API, de rede e de respostas malformadas
//   - Decodificação das respostas para os tipos de domínio
//   - Autenticação, CRUD de tomadores e emissão/cancelamento de NFS-e
//
// # Início Rápido
//
// Criar o contexto de requisição e o cliente:
//
//	rc := nymu.NewRequestContext(cfg.API.BaseURL)
//	rc.AddHeaderInterceptor(nymu.AuthInterceptor(tokenStore, logger))
//	rc.AddHeaderInterceptor(nymu.RequestIDInterceptor())
//
//	client, err := nymu.NewClient(&cfg.API, rc, tokenStore, logger)
//
// Fazer login e solicitar uma nota:
//
//	res, err := client.Login(ctx, "usuario@exemplo.com", "senha123")
//	nota, err := client.CreateNotaFiscal(ctx, domain.SolicitacaoNotaFiscal{
//	    TomadorID:      "tom-1",
//	    LocalPrestacao: "Salvador",
//	    Competencia:    "06/2025",
//	    Valor:          150000, // R$ 1.500,00
//	    Descricao:      "Consultoria em sistemas",
//	})
//
// # Tratamento de Erros
//
// O pacote fornece erros tipados para condições comuns:
//
//	if nymu.IsNetwork(err) {
//	    // Servidor inacessível, a mensagem traz o passo a passo
//	}
//	if nymu.IsValidation(err) {
//	    // 400/422: mensagens de validação do servidor já unidas por ", "
//	}
//	if nymu.IsMalformed(err) {
//	    // Resposta 2xx fora do formato esperado
//	}
package nymu
