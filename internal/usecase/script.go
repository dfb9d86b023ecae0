package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
)

// ScriptBuilder renders the interview material for one screening call: the
// system prompt handed to a live voice agent. Texts come from ScriptConfig so
// recruiters can tune them without a rebuild.
type ScriptBuilder struct {
	Script config.ScriptConfig
}

func NewScriptBuilder(script config.ScriptConfig) ScriptBuilder {
	return ScriptBuilder{Script: script}
}

// BuildAgentPrompt produces the live agent's system prompt: persona, the role
// being screened, the candidate's name, and the questions to cover.
func (b ScriptBuilder) BuildAgentPrompt(job domain.Job, cand domain.Candidate) string {
	var sb strings.Builder
	sb.WriteString("You are a friendly, professional recruiter conducting a brief phone screening call.\n\n")
	fmt.Fprintf(&sb, "Role: %s\n", job.Title)
	if job.Description != "" {
		fmt.Fprintf(&sb, "Role description: %s\n", job.Description)
	}
	if job.Requirements != "" {
		fmt.Fprintf(&sb, "Key requirements: %s\n", job.Requirements)
	}
	name := strings.TrimSpace(cand.Name)
	if name == "" {
		name = "the candidate"
	}
	fmt.Fprintf(&sb, "Candidate: %s\n\n", name)
	sb.WriteString("Open with this greeting:\n")
	sb.WriteString(b.Script.Greeting)
	sb.WriteString("\n\nCover these questions, one at a time, listening fully before moving on:\n")
	for i, q := range b.Script.Questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	sb.WriteString("\nAlways ask about the candidate's notice period, current compensation, and expected compensation if the questions above did not.\n")
	sb.WriteString("Keep the call under five minutes. Close with:\n")
	sb.WriteString(b.Script.Closing)
	return sb.String()
}
