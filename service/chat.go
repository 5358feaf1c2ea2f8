package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefusalSentence is the verbatim answer the model must give when the
// requested information cannot be derived from the evidence. It is the
// system's only "I don't know" mechanism.
const RefusalSentence = "I cannot answer that based on the documents provided."

// FallbackSentence replaces the answer when the completion call itself
// fails. Chat-facing failures are deliberately soft; the underlying error is
// logged, never shown to the user.
const FallbackSentence = "This information is not contained in the documents."

// chatSystemInstruction encodes the closed-world answering policy sent with
// every chat completion.
var chatSystemInstruction = fmt.Sprintf(
	`You answer questions about one person, strictly from the evidence below the QUESTION marker. `+
		`You may summarize, explain and draw direct logical inferences from that evidence, such as deriving a skill from a described task. `+
		`You must not introduce outside facts. `+
		`You must not estimate or guess quantities that are not explicitly stated, such as total years of experience. `+
		`If the requested information cannot be derived from the evidence, answer exactly: %q`,
	RefusalSentence,
)

// AnsweringEngine answers questions strictly from the assembled evidence of
// one profile
type AnsweringEngine struct {
	assembler  *ContextAssembler
	completion CompletionClient
	logger     *zap.Logger
}

// NewAnsweringEngine creates a new grounded answering engine
func NewAnsweringEngine(assembler *ContextAssembler, completion CompletionClient, log *zap.Logger) *AnsweringEngine {
	return &AnsweringEngine{
		assembler:  assembler,
		completion: completion,
		logger:     log,
	}
}

// AnswerForToken answers a question against the evidence of a private
// profile token. Precondition failures (profile missing, ownership
// mismatch) are returned as errors before any model call; completion
// failures degrade to FallbackSentence.
func (e *AnsweringEngine) AnswerForToken(ctx context.Context, token, question string, requester *uuid.UUID) (string, error) {
	evidence, err := e.assembler.AssembleByToken(ctx, token)
	if err != nil {
		return "", err
	}

	// Owned profiles are readable only by their owner; anonymous profiles by
	// any bearer of the token.
	if evidence.OwnerID != nil {
		if requester == nil || *requester != *evidence.OwnerID {
			return "", fmt.Errorf("%w: token belongs to another account", ErrAccessDenied)
		}
	}

	return e.answer(ctx, evidence, question), nil
}

// AnswerForSlug answers a question against the latest profile of a public
// slug. No ownership check; public profiles are readable by anyone.
func (e *AnsweringEngine) AnswerForSlug(ctx context.Context, slug, question string) (string, error) {
	evidence, err := e.assembler.AssembleBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	return e.answer(ctx, evidence, question), nil
}

func (e *AnsweringEngine) answer(ctx context.Context, evidence *EvidenceContext, question string) string {
	prompt := composePrompt(evidence, question)

	answer, err := e.completion.Complete(ctx, chatSystemInstruction, prompt)
	if err != nil {
		e.logger.Error("chat completion failed",
			zap.String("token", evidence.Token),
			zap.Error(err),
		)
		return FallbackSentence
	}

	return strings.TrimSpace(answer)
}

// composePrompt renders the evidence context and the question into the
// single-turn prompt
func composePrompt(ec *EvidenceContext, question string) string {
	var b strings.Builder

	b.WriteString("QUESTION: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nEVIDENCE:\n")

	b.WriteString("## Person\n")
	writeField(&b, "Name", ec.Person.Name)
	writeField(&b, "Title", ec.Person.Title)
	writeField(&b, "Location", ec.Person.Location)
	writeField(&b, "Summary", ec.Person.Summary)

	if len(ec.Skills) > 0 {
		b.WriteString("\n## Skills\n")
		for _, skill := range ec.Skills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}

	if len(ec.Experience) > 0 {
		b.WriteString("\n## Experience\n")
		for _, exp := range ec.Experience {
			fmt.Fprintf(&b, "- %s at %s (%s - %s)\n", exp.Role, exp.Organization, exp.Start, exp.End)
			for _, task := range exp.Tasks {
				fmt.Fprintf(&b, "  - %s\n", task)
			}
			if len(exp.Keywords) > 0 {
				fmt.Fprintf(&b, "  Keywords: %s\n", strings.Join(exp.Keywords, ", "))
			}
		}
	}

	if len(ec.Projects) > 0 {
		b.WriteString("\n## Projects\n")
		for _, proj := range ec.Projects {
			fmt.Fprintf(&b, "- %s (%s): %s\n", proj.Name, proj.Role, proj.Summary)
			if proj.Impact != "" {
				fmt.Fprintf(&b, "  Impact: %s\n", proj.Impact)
			}
			if len(proj.TechStack) > 0 {
				fmt.Fprintf(&b, "  Tech: %s\n", strings.Join(proj.TechStack, ", "))
			}
			for _, link := range proj.Links {
				fmt.Fprintf(&b, "  Link: %s\n", link)
			}
		}
	}

	if len(ec.Education) > 0 {
		b.WriteString("\n## Education\n")
		for _, edu := range ec.Education {
			fmt.Fprintf(&b, "- %s, %s (%s - %s)\n", edu.Degree, edu.Institution, edu.Start, edu.End)
		}
	}

	if len(ec.Languages) > 0 {
		b.WriteString("\n## Languages\n")
		for _, lang := range ec.Languages {
			fmt.Fprintf(&b, "- %s: %s\n", lang.Name, lang.Level)
		}
	}

	if len(ec.Certificates) > 0 {
		b.WriteString("\n## Certificates\n")
		for _, cert := range ec.Certificates {
			fmt.Fprintf(&b, "- %s, %s (%s)\n", cert.Title, cert.Issuer, cert.Date)
		}
	}

	if len(ec.AdditionalTexts) > 0 {
		b.WriteString("\n## Additional documents\n")
		for _, text := range ec.AdditionalTexts {
			fmt.Fprintf(&b, "---\n%s\n", text)
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}
