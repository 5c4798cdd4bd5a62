//go:build cuda

package device

import "gorgonia.org/cu"

func gpus() (o []string) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil
	}
	for i := 0; i < n; i++ {
		name, err := cu.Device(i).Name()
		if err != nil {
			continue
		}
		o = append(o, name)
	}
	return
}
