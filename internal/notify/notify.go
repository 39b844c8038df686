package notify

import (
	"backoffice/internal/pkg/logger"
)

// Notifier é o canal de notificações consumido pelo controller:
// mensagens de sucesso/falha voltadas ao operador, fire-and-forget
// (nenhum retorno é consumido).
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// LogNotifier é a implementação padrão do console: entrega as notificações
// ao operador pelo logger estruturado.
type LogNotifier struct {
	Logger logger.Logger
}

// NewLogNotifier cria um Notifier que escreve no logger injetado.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{Logger: log}
}

// Success entrega uma notificação de sucesso ao operador.
func (n *LogNotifier) Success(message string) {
	n.Logger.Info("✅ "+message, map[string]interface{}{"kind": "notification"})
}

// Failure entrega uma notificação de falha ao operador.
func (n *LogNotifier) Failure(message string) {
	n.Logger.Warn("❌ "+message, map[string]interface{}{"kind": "notification"})
}
