package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cvchat-backend/logger"
	"cvchat-backend/models"

	"go.uber.org/zap"
)

// maxDocumentChars bounds the extracted text sent to the model
const maxDocumentChars = 20000

// parserSystemInstruction is the fixed instruction sent with every parse
// call. The schema is enforced at the prompt level only; the code checks
// nothing beyond "is it a valid JSON object" and downstream readers coerce
// every field.
const parserSystemInstruction = `You are a strict document parsing engine. ` +
	`You return exactly one JSON object and nothing else: no markdown, no code fences, no commentary. ` +
	`You never invent, infer or estimate facts that are not present in the source text. ` +
	`Fields without source data are empty strings; lists without source data are empty arrays, never null.`

const cvSchema = `{
  "person": {"name": string, "title": string, "location": string, "summary": string},
  "skills": [string],
  "experience": [{"organization": string, "role": string, "start": string, "end": string, "tasks": [string], "keywords": [string]}],
  "projects": [{"name": string, "role": string, "summary": string, "impact": string, "techStack": [string], "links": [string]}],
  "education": [{"institution": string, "degree": string, "start": string, "end": string}],
  "certificates": [{"title": string, "issuer": string, "date": string}],
  "languages": [{"name": string, "level": string}]
}`

const certificateSchema = `{"title": string, "issuer": string, "date": string}`

// Parser turns extracted document text into structured records via a
// single-turn, temperature-0 completion call
type Parser struct {
	completion CompletionClient
	logger     *zap.Logger
}

// NewParser creates a new schema-constrained parser
func NewParser(completion CompletionClient, log *zap.Logger) *Parser {
	return &Parser{completion: completion, logger: log}
}

// ParseCV parses CV text into a profile document
func (p *Parser) ParseCV(ctx context.Context, text string) (models.ProfileDocument, error) {
	raw, err := p.parse(ctx, text, cvSchema, "CV / resume")
	if err != nil {
		return nil, err
	}
	return models.ProfileDocument(raw), nil
}

// ParseCertificate parses certificate text into a certificate document
func (p *Parser) ParseCertificate(ctx context.Context, text string) (models.CertificateDocument, error) {
	raw, err := p.parse(ctx, text, certificateSchema, "certificate or diploma")
	if err != nil {
		return nil, err
	}
	return models.CertificateDocument(raw), nil
}

func (p *Parser) parse(ctx context.Context, text, schema, kind string) (map[string]interface{}, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}

	prompt := fmt.Sprintf(
		"The text between the markers below was extracted from a %s.\n<<<\n%s\n>>>\n\n"+
			"Return exactly one JSON object with this shape:\n%s\n\n"+
			"Rules:\n"+
			"- No fields beyond the schema\n"+
			"- No markdown, no text outside the JSON object\n"+
			"- A value absent from the source text is \"\" for strings and [] for lists\n",
		kind, text, schema,
	)

	raw, err := p.completion.Complete(ctx, parserSystemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingUnavailable, err)
	}

	doc, err := decodeObject(raw)
	if err != nil {
		p.logger.Error("model output is not a JSON object",
			zap.String("kind", kind),
			zap.String("payload", logger.Truncate(raw, 500)),
		)
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	return doc, nil
}

// decodeObject parses the completion body as a JSON object. Models sometimes
// wrap the object in code fences or prose despite the instruction, so a
// brace-delimited slice is tried before giving up.
func decodeObject(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		return doc, nil
	}

	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i >= 0 && j > i {
		if err := json.Unmarshal([]byte(raw[i:j+1]), &doc); err == nil {
			return doc, nil
		}
	}

	return nil, fmt.Errorf("body is not a JSON object")
}
