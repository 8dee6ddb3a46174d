package sandbox

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/validation"
)

type nfseXML struct {
	XMLName     xml.Name `xml:"NFSe"`
	Numero      string   `xml:"infNFSe>nNFSe"`
	Serie       string   `xml:"infNFSe>serie"`
	ChaveAcesso string   `xml:"infNFSe>chaveAcesso"`
	Protocolo   string   `xml:"infNFSe>nProt"`
	CodVerif    string   `xml:"infNFSe>cVerif"`
	DataEmissao string   `xml:"infNFSe>dhProc"`
	Competencia string   `xml:"infNFSe>DPS>dCompet"`
	Local       string   `xml:"infNFSe>DPS>xLocPrestacao"`
	Tomador     struct {
		Documento string `xml:"doc"`
		Nome      string `xml:"xNome"`
	} `xml:"infNFSe>DPS>toma"`
	Servico struct {
		Descricao string `xml:"xDescServ"`
		Valor     string `xml:"vServ"`
	} `xml:"infNFSe>DPS>serv"`
	Situacao string `xml:"infNFSe>situacao"`
}

// errNoDocument indica nota sem XML/PDF (não autorizada)
var errNoDocument = fmt.Errorf("%w: documento indisponível para esta nota", ErrNotFound)

// NotaXML gera o XML da nota autorizada
func (s *Store) NotaXML(owner, id string) ([]byte, error) {
	n, err := s.GetNota(owner, id)
	if err != nil {
		return nil, err
	}
	if n.AuthorizedAt == nil {
		return nil, errNoDocument
	}

	doc := nfseXML{
		Numero:      n.InvoiceNumber,
		Serie:       n.Series,
		ChaveAcesso: n.AccessKey,
		Protocolo:   n.Protocol,
		CodVerif:    n.VerificationCode,
		DataEmissao: n.AuthorizedAt.Format(time.RFC3339),
		Competencia: n.Competencia,
		Local:       n.LocalPrestacao,
		Situacao:    string(n.Status),
	}
	doc.Tomador.Documento = n.TomadorDocumento
	doc.Tomador.Nome = n.TomadorNome
	doc.Servico.Descricao = n.ServiceDescription
	doc.Servico.Valor = fmt.Sprintf("%d.%02d", n.ServiceValue/100, n.ServiceValue%100)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("erro ao gerar XML: %w", err)
	}
	return buf.Bytes(), nil
}

// NotaPDF gera um DANFSe simplificado em PDF de uma página
func (s *Store) NotaPDF(owner, id string) ([]byte, error) {
	n, err := s.GetNota(owner, id)
	if err != nil {
		return nil, err
	}
	if n.AuthorizedAt == nil {
		return nil, errNoDocument
	}
	return renderDANFSe(&n)
}

// renderDANFSe monta o documento auxiliar com cabeçalho, quadro do tomador e quadro do serviço
func renderDANFSe(n *domain.NotaFiscal) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(41, 128, 185)
	pdf.Rect(0, 0, 210, 36, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 12, tr("DANFSe - Documento Auxiliar da NFS-e"))
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(190, 7, tr(fmt.Sprintf("Número %s  Série %s  Emitida em %s", n.InvoiceNumber, n.Series, n.AuthorizedAt.Format("02/01/2006 15:04"))))
	pdf.Ln(7)

	pdf.SetTextColor(44, 62, 80)
	pdf.SetDrawColor(52, 73, 94)
	pdf.SetY(44)

	section := func(title string, rows [][2]string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, tr(title))
		pdf.Ln(8)
		for _, r := range rows {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, 7, tr(r[0]), "1", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(145, 7, tr(r[1]), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	section("Identificação", [][2]string{
		{"Chave de acesso", n.AccessKey},
		{"Protocolo", n.Protocol},
		{"Código de verificação", n.VerificationCode},
		{"Situação", n.Status.Label()},
	})
	section("Tomador", [][2]string{
		{"Nome", n.TomadorNome},
		{"Documento", validation.FormatDocument(n.TomadorDocumento)},
	})
	section("Serviço", [][2]string{
		{"Competência", n.Competencia},
		{"Local", n.LocalPrestacao},
		{"Valor", validation.FormatCurrency(n.ServiceValue)},
	})

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(190, 7, tr("Discriminação do serviço"))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(190, 6, tr(n.ServiceDescription), "1", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar PDF: %w", err)
	}
	return buf.Bytes(), nil
}
