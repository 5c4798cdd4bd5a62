package parallel

import "sync"

import "github.com/neurlang/recognizer/device"

// ForEach executes body for every integer from 0 to length with at most limit
// goroutines at a time. A limit <= 0 uses the device thread budget.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = device.Threads()
	}
	if length <= 0 {
		return
	}
	if limit == 1 || length == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// ForEachErr is ForEach where body may fail. It returns the error of the lowest failing index.
func ForEachErr(length, limit int, body func(i int) error) error {
	var errs = make([]error, length)
	ForEach(length, limit, func(i int) {
		errs[i] = body(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
