package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"smart-spray/internal/domain/apperr"
	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// OverrideStatus статус успешного ручного управления
const OverrideStatus = "Override applied"

// SprayConfig настройки конвейера решений
type SprayConfig struct {
	ServoChannels []int         // допустимые каналы привода; пусто = любой неотрицательный
	DeviceTimeout time.Duration // ограничение на push команды контроллеру
}

// DetectionOutput результат автоматического решения
type DetectionOutput struct {
	Prediction     entity.ClassificationResult `json:"prediction"`
	Recommendation entity.Recommendation       `json:"recommendation"`
	Command        entity.Command              `json:"command"`
	Log            entity.LogEntry             `json:"log"`
}

// OverrideRequest поля ручной команды; nil означает, что поле не передано
type OverrideRequest struct {
	Spray      *bool   `json:"spray"`
	SprayTime  *int    `json:"spray_time"`
	ServoIndex *int    `json:"servo_index"`
	Chemical   *string `json:"chemical"`
}

// OverrideOutput результат ручного управления
type OverrideOutput struct {
	Status  string          `json:"status"`
	Command entity.Command  `json:"command"`
	Log     entity.LogEntry `json:"log"`
}

// SprayService координирует решения: классификация, текущая команда, журнал.
// Команда записывается до добавления записи в журнал.
type SprayService struct {
	classifier port.Classifier
	camera     port.Camera
	table      port.TreatmentTable
	commands   port.CommandStore
	audit      port.AuditLog
	device     port.DeviceNotifier
	log        *slog.Logger

	channels      map[int]struct{}
	deviceTimeout time.Duration

	mu        sync.RWMutex
	listeners []port.DecisionListener
}

// NewSprayService создаёт сервис решений; device и camera могут быть nil
func NewSprayService(
	classifier port.Classifier,
	camera port.Camera,
	table port.TreatmentTable,
	commands port.CommandStore,
	audit port.AuditLog,
	device port.DeviceNotifier,
	cfg SprayConfig,
	log *slog.Logger,
) *SprayService {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DeviceTimeout <= 0 {
		cfg.DeviceTimeout = 5 * time.Second
	}
	channels := make(map[int]struct{}, len(cfg.ServoChannels))
	for _, ch := range cfg.ServoChannels {
		channels[ch] = struct{}{}
	}
	return &SprayService{
		classifier:    classifier,
		camera:        camera,
		table:         table,
		commands:      commands,
		audit:         audit,
		device:        device,
		log:           log,
		channels:      channels,
		deviceTimeout: cfg.DeviceTimeout,
	}
}

// Subscribe регистрирует получателя записанных решений
func (s *SprayService) Subscribe(listener port.DecisionListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// HandleDetection классифицирует изображение и применяет рекомендацию.
// При ошибке журнала команда остаётся применённой, вместе с ошибкой возвращается результат.
func (s *SprayService) HandleDetection(ctx context.Context, source string, image []byte) (*DetectionOutput, error) {
	if len(image) == 0 {
		return nil, apperr.New(apperr.KindInvalidImage, "no image uploaded")
	}
	if s.classifier == nil {
		return nil, apperr.New(apperr.KindClassifierUnavailable, "classifier is not configured")
	}

	result, err := s.classifier.Classify(ctx, image)
	if err != nil {
		return nil, classifierError(err)
	}

	rec := s.table.Resolve(result.Label)
	cmd := rec.Command()
	s.commands.Write(cmd)

	entry := entity.LogEntry{
		Source:     source,
		ClassID:    result.Label,
		Disease:    rec.Disease,
		Confidence: result.Confidence,
		Spray:      rec.Spray,
		SprayTime:  rec.SprayTime,
		ServoIndex: rec.Clone().ServoIndex,
		Chemical:   rec.Chemical,
	}
	entry.DeviceResponse = s.push(ctx, cmd)

	s.log.Info("detection applied",
		slog.String("source", source),
		slog.String("label", result.Label),
		slog.Float64("confidence", result.Confidence),
		slog.Bool("spray", cmd.Spray),
	)

	stored, err := s.record(ctx, entry)
	out := &DetectionOutput{
		Prediction:     *result,
		Recommendation: rec,
		Command:        cmd,
		Log:            stored,
	}
	return out, err
}

// HandleCapture снимает кадр с камеры и запускает тот же конвейер
func (s *SprayService) HandleCapture(ctx context.Context) (*DetectionOutput, error) {
	if s.camera == nil {
		return nil, apperr.New(apperr.KindCameraUnavailable, "camera is not configured")
	}
	frame, err := s.camera.Capture(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCameraUnavailable, "webcam not accessible", err)
	}
	return s.HandleDetection(ctx, entity.SourceWebcam, frame)
}

// HandleOverride применяет команду оператора, минуя классификатор и таблицу
func (s *SprayService) HandleOverride(ctx context.Context, req OverrideRequest) (*OverrideOutput, error) {
	cmd, err := s.validateOverride(req)
	if err != nil {
		return nil, err
	}

	s.commands.Write(cmd)

	entry := entity.LogEntry{
		Source:     entity.SourceManual,
		ClassID:    entity.ManualClassID,
		Disease:    entity.ManualDisease,
		Confidence: 1.0,
		Spray:      cmd.Spray,
		SprayTime:  cmd.SprayTime,
		ServoIndex: cmd.Clone().ServoIndex,
		Chemical:   cmd.ChemicalName(),
	}
	entry.DeviceResponse = s.push(ctx, cmd)

	s.log.Info("override applied", slog.Bool("spray", cmd.Spray), slog.Int("spray_time", cmd.SprayTime))

	stored, err := s.record(ctx, entry)
	out := &OverrideOutput{Status: OverrideStatus, Command: cmd, Log: stored}
	return out, err
}

// Poll возвращает текущую команду, не изменяя её
func (s *SprayService) Poll() entity.Command {
	return s.commands.Read()
}

// Logs возвращает последние last записей журнала; last < 0 означает все
func (s *SprayService) Logs(ctx context.Context, last int) ([]entity.LogEntry, error) {
	entries, err := s.audit.Load(ctx, last)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistenceFailure, "failed to read spray log", err)
	}
	return entries, nil
}

func (s *SprayService) validateOverride(req OverrideRequest) (entity.Command, error) {
	cmd := entity.Command{}
	if req.Spray != nil {
		cmd.Spray = *req.Spray
	}
	if req.SprayTime != nil {
		if *req.SprayTime < 0 {
			return entity.Command{}, apperr.New(apperr.KindValidation, "spray_time must be a non-negative integer")
		}
		cmd.SprayTime = *req.SprayTime
	}
	if req.ServoIndex != nil {
		if !s.validChannel(*req.ServoIndex) {
			return entity.Command{}, apperr.New(apperr.KindValidation, "servo_index is not a known actuator channel")
		}
		cmd.ServoIndex = entity.IntPtr(*req.ServoIndex)
	}
	if req.Chemical != nil {
		cmd.Chemical = entity.StringPtr(*req.Chemical)
	}
	return cmd, nil
}

func (s *SprayService) validChannel(ch int) bool {
	if ch < 0 {
		return false
	}
	if len(s.channels) == 0 {
		return true
	}
	_, ok := s.channels[ch]
	return ok
}

// push отправляет команду контроллеру, если нужно опрыскивание.
// Ошибка не прерывает конвейер и попадает в журнал строкой.
func (s *SprayService) push(ctx context.Context, cmd entity.Command) string {
	if s.device == nil || !cmd.Spray {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.deviceTimeout)
	defer cancel()

	resp, err := s.device.Notify(ctx, cmd)
	if err != nil {
		s.log.Warn("device push failed", slog.Any("error", err))
		if resp == "" {
			resp = "Error: " + err.Error()
		}
	}
	return resp
}

// record добавляет запись в журнал и уведомляет подписчиков
func (s *SprayService) record(ctx context.Context, entry entity.LogEntry) (entity.LogEntry, error) {
	stored, err := s.audit.Append(ctx, entry)
	if err != nil {
		s.log.Error("audit append failed", slog.Any("error", err), slog.String("class_id", entry.ClassID))
		return entry, apperr.Wrap(apperr.KindPersistenceFailure, "failed to record decision", err)
	}

	s.mu.RLock()
	listeners := append([]port.DecisionListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.OnDecision(ctx, stored.Clone())
	}
	return stored, nil
}

// classifierError сохраняет класс ошибки классификатора; прочее считается недоступностью
func classifierError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidImage, apperr.KindClassifierUnavailable:
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindClassifierUnavailable, "classifier request aborted", err)
	}
	return apperr.Wrap(apperr.KindClassifierUnavailable, "classifier failed", err)
}
