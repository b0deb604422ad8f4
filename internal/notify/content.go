// Package notify composes and delivers candidate status e-mails.
package notify

import (
	"fmt"
	"html"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// Message is a rendered e-mail subject and plain body.
type Message struct {
	Subject string
	Body    string
}

// Compose selects the copy for a stage. Only the candidate's first name is used.
func Compose(stage domain.Stage, candidateName string) Message {
	name := domain.FirstName(candidateName)
	switch stage {
	case domain.StageManagerReview:
		return Message{
			Subject: "¡Hemos avanzado en tu postulación!",
			Body:    fmt.Sprintf("¡Hola %s! Buenas noticias. El equipo de RH ha revisado tu perfil y lo ha pasado a la siguiente fase. El Gerente de Área lo revisará pronto. ¡Mucho éxito!", name),
		}
	case domain.StageInterviewScheduled:
		return Message{
			Subject: "¡Queremos conocerte! (Entrevista)",
			Body:    fmt.Sprintf("¡Hola %s! Al Gerente de Área le ha gustado tu perfil y queremos agendar una entrevista contigo. RH se pondrá en contacto pronto para coordinar una fecha.", name),
		}
	case domain.StageHired:
		return Message{
			Subject: "¡Bienvenido al equipo!",
			Body:    fmt.Sprintf("¡Hola %s! Nos alegra confirmarte que has sido seleccionado para el puesto. RH se pondrá en contacto contigo para los siguientes pasos.", name),
		}
	case domain.StageRejected:
		return Message{
			Subject: "Actualización sobre tu postulación",
			Body:    fmt.Sprintf("Hola %s, te agradecemos por tu interés. En esta ocasión, hemos decidido continuar el proceso con otros candidatos. Te deseamos mucho éxito en tu búsqueda.", name),
		}
	default:
		return Message{
			Subject: "Tu postulación se ha actualizado",
			Body:    fmt.Sprintf("Hola %s, tu postulación ha cambiado al estado: %s.", name, stage),
		}
	}
}

// HTML renders the body with the standard signature.
func (m Message) HTML() string {
	return fmt.Sprintf("<p>%s</p><p>Saludos,<br>El equipo de Contratación</p>", html.EscapeString(m.Body))
}
