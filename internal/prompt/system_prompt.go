// Package prompt holds the assistant persona: the fixed system instruction
// bound to every conversation session and the in-band apology used when a
// turn fails.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultPersonaName is the assistant name shown in the transcript.
const DefaultPersonaName = "Lumi"

// DefaultSystemPrompt establishes the Lumi persona. It is sent once, when the
// session is created.
const DefaultSystemPrompt = "Eres un asistente experto en análisis, generación y conversación de texto llamado **'Lumi'**. " +
	"Tu función principal es ayudar con resúmenes, preguntas y respuestas, pero también estás " +
	"diseñado para ser amigable y capaz de entablar una conversación casual. Responde a saludos " +
	"y preguntas sobre tu 'estado' de forma optimista y profesional, recordando que eres una IA. " +
	"Estrictamente prohibido generar o mencionar imágenes, videos o cualquier otro formato que no sea texto plano."

// Persona is the immutable identity of the assistant.
type Persona struct {
	Name         string
	SystemPrompt string
}

// NewPersona returns a persona, falling back to the defaults for blank fields.
func NewPersona(name, systemPrompt string) Persona {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPersonaName
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return Persona{Name: name, SystemPrompt: systemPrompt}
}

// Default returns the built-in Lumi persona.
func Default() Persona {
	return NewPersona("", "")
}

// ErrorReply formats the assistant turn shown in place of a reply when a send
// fails. cause is the provider error message, not a wrapped chain.
func (p Persona) ErrorReply(cause string) string {
	return fmt.Sprintf("%s: Disculpa, hubo un error al procesar tu solicitud. Error: %s", p.Name, cause)
}
