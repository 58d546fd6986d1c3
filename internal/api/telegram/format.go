package telegram

import (
	"fmt"
	"strings"

	app "smart-spray/internal/application"
	"smart-spray/internal/domain/apperr"
	"smart-spray/internal/domain/entity"
)

func formatCommand(cmd entity.Command) string {
	var sb strings.Builder
	sb.WriteString("🎯 Текущая команда контроллера\n")
	if !cmd.Spray {
		sb.WriteString("Опрыскивание: выкл")
		return sb.String()
	}
	sb.WriteString("Опрыскивание: вкл\n")
	fmt.Fprintf(&sb, "Длительность: %d с\n", cmd.SprayTime)
	fmt.Fprintf(&sb, "Канал: %s\n", formatServo(cmd.ServoIndex))
	fmt.Fprintf(&sb, "Препарат: %s", orDash(cmd.ChemicalName()))
	return sb.String()
}

func formatDetection(out *app.DetectionOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔬 %s (%.0f%%)\n", out.Recommendation.Disease, out.Prediction.Confidence*100)
	if !out.Recommendation.Spray {
		sb.WriteString("✅ Опрыскивание не требуется.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "💧 Опрыскивание %d с, канал %s, препарат %s.",
		out.Recommendation.SprayTime, formatServo(out.Recommendation.ServoIndex), orDash(out.Recommendation.Chemical))
	return sb.String()
}

func formatDecision(entry entity.LogEntry) string {
	var sb strings.Builder
	if entry.IsManual() {
		sb.WriteString("🛠 Ручная команда\n")
	} else {
		fmt.Fprintf(&sb, "🔬 Решение (%s): %s, %.0f%%\n", entry.Source, entry.Disease, entry.Confidence*100)
	}
	sb.WriteString(formatEntryAction(entry))
	return sb.String()
}

func formatLogs(entries []entity.LogEntry) string {
	if len(entries) == 0 {
		return msgNoLogs
	}
	var sb strings.Builder
	sb.WriteString("📜 Последние решения:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n%s · %s · %s", e.Timestamp.Format("02.01 15:04:05"), e.Disease, formatEntryAction(e))
	}
	return sb.String()
}

func formatEntryAction(e entity.LogEntry) string {
	if !e.Spray {
		return "без опрыскивания"
	}
	return fmt.Sprintf("опрыскивание %d с, канал %s, %s", e.SprayTime, formatServo(e.ServoIndex), orDash(e.Chemical))
}

func formatError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidImage:
		return msgProcessingError
	case apperr.KindClassifierUnavailable:
		return "⚠️ Классификатор недоступен, попробуйте позже."
	case apperr.KindPersistenceFailure:
		return "⚠️ Команда применена, но запись в журнал не удалась."
	default:
		return "⚠️ Внутренняя ошибка."
	}
}

func formatServo(idx *int) string {
	if idx == nil {
		return "—"
	}
	return fmt.Sprintf("%d", *idx)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
