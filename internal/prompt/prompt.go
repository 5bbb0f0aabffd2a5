// Package prompt builds the advisory-service prompt from classified
// errors.
package prompt

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/logtriage/logtriage/internal/common"
)

// MaxErrors caps how many groups are sent to the advisory service. The
// classifier hands groups over sorted by descending frequency, so the cap
// keeps the most frequent ones.
const MaxErrors = 10

const systemPrompt = "Ты выступаешь в роли AI-эксперта по анализу логов приложений. " +
	"Для каждой ошибки определи критичность (низкая / средняя / высокая), " +
	"краткую причину возникновения и конкретную рекомендацию - что инженер " +
	"должен сделать, чтобы устранить проблему."

const userInstructions = "Ниже представлен список ошибок из логов информационной системы.\n" +
	"Рекомендация должна быть конкретной инструкцией к действию: завести " +
	"задачу на разработку, проверить настройки конкретного сервиса, изменить " +
	"конфигурацию, пересоздать данные, исправить код и т.п.\n" +
	"Ответ верни строго в виде JSON-массива без пояснений.\n\n" +
	"Вот список ошибок:\n%s"

// advisoryItem mirrors the record shape the advisory service is asked to
// return; the recovery engine coerces whatever actually comes back.
type advisoryItem struct {
	Message        string `json:"message"`
	Frequency      int    `json:"frequency"`
	Criticality    string `json:"criticality"`
	Recommendation string `json:"recommendation"`
	RootCause      string `json:"root_cause"`
	InfoNeeded     string `json:"info_needed"`
}

// Build renders the prompt for the given classified errors, keeping at
// most MaxErrors entries.
func Build(errors []*common.ClassifiedError) *promptfmt.Prompt {
	top := errors
	if len(top) > MaxErrors {
		top = top[:MaxErrors]
	}

	var lines []string
	for _, e := range top {
		example := firstExample(e)
		if example == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- (%s) %s  [class: %s, count: %d, criticality: %s]",
			e.Level, example, e.OriginClass, e.Frequency, e.Criticality))
	}

	return promptfmt.New().
		System(systemPrompt).
		User(userInstructions, strings.Join(lines, "\n")).
		ExpectJSON(&[]advisoryItem{}).
		Build()
}

func firstExample(e *common.ClassifiedError) string {
	examples := e.Examples()
	if len(examples) == 0 {
		return strings.TrimSpace(e.Message)
	}
	return strings.TrimSpace(examples[0])
}
