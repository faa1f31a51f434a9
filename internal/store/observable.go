package store

import "sync"

// Listener receives every published value
type Listener[T any] func(T)

// observable holds subscribers and fans published values out to them.
// Listeners run synchronously on the publishing goroutine, in subscription order.
type observable[T any] struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener[T]
	order     []int
}

func (o *observable[T]) subscribe(fn Listener[T]) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.listeners == nil {
		o.listeners = make(map[int]Listener[T])
	}
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.order = append(o.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.listeners, id)
			for i, v := range o.order {
				if v == id {
					o.order = append(o.order[:i], o.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (o *observable[T]) publish(value T) {
	o.mu.Lock()
	snapshot := make([]Listener[T], 0, len(o.order))
	for _, id := range o.order {
		snapshot = append(snapshot, o.listeners[id])
	}
	o.mu.Unlock()

	for _, fn := range snapshot {
		fn(value)
	}
}
