package service

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	clickWriteTimeout    = 5 * time.Second
)

// ClickProcessor асинхронная запись кликов: редирект не ждёт вставки в БД
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(event *models.ClickEvent)
	Stats() ChannelStats
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent // Канал для событий кликов
	workerCount  int                     // Количество воркеров
	wg           sync.WaitGroup          // WaitGroup для ожидания завершения воркеров

	mu      sync.RWMutex // защищает stopped и закрытие канала
	stopped bool
	now     func() time.Time
}

// NewClickProcessor создаёт новый экземпляр процессора кликов.
// Неположительные workers/buffer заменяются значениями по умолчанию.
func NewClickProcessor(
	clickRepo repository.ClickRepository,
	workers int,
	buffer int,
	logger *zap.Logger,
) ClickProcessor {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if buffer <= 0 {
		buffer = defaultChannelBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickProcessor{
		clickRepo:    clickRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, buffer),
		workerCount:  workers,
		now:          time.Now,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.logger.Info("Starting click workers", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop перестаёт принимать события, дописывает очередь и ждёт воркеров
func (p *clickProcessor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.clickChannel)
	p.mu.Unlock()

	p.logger.Info("Stopping click processor...")
	p.wg.Wait()
	p.logger.Info("Click processor stopped")
}

// worker обрабатывает события кликов из канала до его закрытия
func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Click worker started", zap.Int("id", id))

	for event := range p.clickChannel {
		p.processClick(event)
	}

	p.logger.Debug("Click worker stopped", zap.Int("id", id))
}

// processClick пишет один клик. Ошибка логируется и теряется: повторов нет.
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), clickWriteTimeout)
	defer cancel()

	id, err := gonanoid.New(idLength)
	if err != nil {
		p.logger.Error("Failed to generate click id", zap.Error(err))
		return
	}

	click := &models.Click{
		ID:        id,
		LinkID:    event.LinkID,
		UserAgent: optional(event.UserAgent),
		Referer:   optional(event.Referer),
		CreatedAt: p.now().UTC(),
	}

	if err := p.clickRepo.RecordClick(ctx, click); err != nil {
		p.logger.Error("Failed to record click",
			zap.String("link_id", event.LinkID),
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
	}
}

// RecordClick отправляет событие клика в worker pool (неблокирующая операция)
func (p *clickProcessor) RecordClick(event *models.ClickEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logger.Warn("Click processor stopped, event dropped", zap.String("short_code", event.ShortCode))
		return
	}

	select {
	case p.clickChannel <- event:
	default:
		// Канал заполнен: теряем статистику, но не задерживаем редирект
		p.logger.Warn("Click buffer full, event dropped", zap.String("short_code", event.ShortCode))
	}
}

// Stats возвращает статистику канала для мониторинга
func (p *clickProcessor) Stats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int `json:"buffer_size"`  // Общая ёмкость канала
	BufferUsed  int `json:"buffer_used"`  // Текущее использование
	WorkerCount int `json:"worker_count"` // Количество воркеров
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
