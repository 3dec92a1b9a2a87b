package colissimo

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/parcel-platform/label-service/internal/domain"
)

// soapReply is a split carrier response: the XML document part and any
// binary attachments, in wire order. The SLS service answers with SOAP
// with-attachments (MIME multipart); a non-multipart reply is treated as a
// bare document with no attachments.
type soapReply struct {
	document    string
	attachments [][]byte
}

func parseReply(contentType string, body []byte) (*soapReply, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return &soapReply{document: string(body)}, nil
	}

	reply := &soapReply{}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}

		if isDocumentPart(part.Header.Get("Content-Type")) && reply.document == "" {
			reply.document = string(content)
			continue
		}
		reply.attachments = append(reply.attachments, content)
	}

	return reply, nil
}

func isDocumentPart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.Contains(mediaType, "xml") || strings.HasPrefix(mediaType, "text/")
}

// extractBetween scrapes the text between a marker pair inside the raw
// document. Best effort by design: carrier fault payloads do not conform
// to the success schema, so structured parsing is not an option here.
func extractBetween(document, open, close string) (string, bool) {
	start := strings.Index(document, open)
	if start < 0 {
		return "", false
	}
	start += len(open)
	end := strings.Index(document[start:], close)
	if end < 0 {
		return "", false
	}
	return document[start : start+end], true
}

// parseLabelResult interprets a generateLabel reply. A reply is valid when
// it carries at least one attachment: the label itself, optionally followed
// by a CN23 customs form. Anything else is a carrier-reported rejection
// whose message is scraped from the document part.
func parseLabelResult(reply *soapReply) *domain.LabelResult {
	if len(reply.attachments) == 0 {
		message, ok := extractBetween(reply.document, "<messageContent>", "</messageContent>")
		if !ok {
			message = domain.ErrNoLabelFound.Error()
		}
		return &domain.LabelResult{Valid: false, ErrorMessage: message}
	}

	result := &domain.LabelResult{
		Valid: true,
		Label: reply.attachments[0],
	}
	if number, ok := extractBetween(reply.document, "<parcelNumber>", "</parcelNumber>"); ok {
		result.ParcelNumber = number
	}
	if len(reply.attachments) > 1 {
		result.CustomsForm = reply.attachments[1]
	}
	return result
}

// parseBordereauResult interprets a bordereau reply. The first attachment
// is the manifest; an empty one is an error, not a zero-length artifact.
// With no attachment the fault text is scraped, falling back to the
// no-label-found condition when the markers are absent.
func parseBordereauResult(reply *soapReply) (*domain.BordereauResult, error) {
	if len(reply.attachments) == 0 {
		if message, ok := extractBetween(reply.document, "<messageContent>", "</messageContent>"); ok {
			return nil, &domain.CarrierFault{Message: message}
		}
		return nil, domain.ErrNoLabelFound
	}

	content := reply.attachments[0]
	if len(content) == 0 {
		return nil, domain.ErrEmptyArtifact
	}
	return &domain.BordereauResult{Content: content}, nil
}
