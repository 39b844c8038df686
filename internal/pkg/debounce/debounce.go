package debounce

import (
	"sync"
	"time"
)

// Debouncer colapsa uma rajada de chamadas Schedule em uma única execução do
// callback, disparada após um período de silêncio de `delay` medido a partir
// da ÚLTIMA chamada. Cada Schedule cancela o timer pendente e o reinicia com
// o novo argumento, então apenas o argumento final da rajada é entregue.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(arg string)
	timer *time.Timer
}

// New cria um Debouncer parametrizado pelo callback e pelo atraso.
func New(delay time.Duration, fn func(arg string)) *Debouncer {
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Schedule agenda (ou reagenda) a execução do callback com o argumento dado.
// Uma chamada que chegue antes do intervalo expirar cancela a execução
// pendente e reinicia o timer.
func (d *Debouncer) Schedule(arg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.fn(arg)
	})
}

// Stop cancela qualquer execução pendente. É o ponto de cancelamento
// explícito usado no encerramento do console.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
