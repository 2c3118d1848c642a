package order

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// NumberGenerator выдаёт человекочитаемые номера заказов вида ORD-YYYYMMDD-####.
// Номер не уникален по построению: уникальность обеспечивает unique constraint
// хранилища заказов плюс ограниченный retry в workflow.
type NumberGenerator struct {
	mu  sync.Mutex
	now func() time.Time
	rnd *rand.Rand
}

// NewNumberGenerator создаёт генератор с инъецируемыми часами и источником
// случайности. nil-аргументы заменяются системными значениями.
func NewNumberGenerator(now func() time.Time, src rand.Source) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &NumberGenerator{
		now: now,
		rnd: rand.New(src),
	}
}

// Next возвращает следующий номер: дата UTC плюс 4-значный суффикс 1000..9999.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	suffix := 1000 + g.rnd.Intn(9000)
	g.mu.Unlock()

	date := g.now().UTC().Format("20060102")
	return fmt.Sprintf("ORD-%s-%d", date, suffix)
}
