package watcher

import "sync"

// Dispatcher delivers batches to the registered callbacks.
type Dispatcher interface {
	Dispatch(batch Batch)
	// Close waits until every accepted batch has been delivered.
	Close()
}

// syncDispatcher runs callbacks on the polling goroutine. A panic in a
// callback is not recovered and ends the process, as for any goroutine.
type syncDispatcher struct {
	onChanges ChangeFunc
	onOp      map[Op]EventFunc
}

func newSyncDispatcher(onChanges ChangeFunc, onOp map[Op]EventFunc) *syncDispatcher {
	return &syncDispatcher{onChanges: onChanges, onOp: onOp}
}

func (d *syncDispatcher) Dispatch(batch Batch) {
	if batch.Empty() {
		return
	}
	if d.onChanges != nil {
		d.onChanges(batch)
	}
	for _, ev := range batch.Events {
		if fn := d.onOp[ev.Op]; fn != nil {
			fn(ev)
		}
	}
}

func (d *syncDispatcher) Close() {}

// queueDispatcher hands batches to a bounded queue drained by its own
// goroutine. A full queue blocks Dispatch until the consumer catches up.
type queueDispatcher struct {
	next  Dispatcher
	queue chan Batch
	wg    sync.WaitGroup
	once  sync.Once
}

func newQueueDispatcher(next Dispatcher, size int) *queueDispatcher {
	d := &queueDispatcher{
		next:  next,
		queue: make(chan Batch, size),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *queueDispatcher) run() {
	defer d.wg.Done()
	for batch := range d.queue {
		d.next.Dispatch(batch)
	}
}

func (d *queueDispatcher) Dispatch(batch Batch) {
	if batch.Empty() {
		return
	}
	d.queue <- batch
}

func (d *queueDispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	d.next.Close()
}
