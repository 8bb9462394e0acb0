package clock

import "time"

// Clock абстрагирует источник текущего времени
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System возвращает часы, использующие time.Now
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Fake представляет управляемые часы для тестов
type Fake struct {
	Current time.Time
}

// NewFake создает часы, зафиксированные на заданном моменте
func NewFake(t time.Time) *Fake {
	return &Fake{Current: t}
}

func (f *Fake) Now() time.Time {
	return f.Current
}

// Advance сдвигает текущее время вперед
func (f *Fake) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
