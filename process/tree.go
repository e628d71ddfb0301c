package process

import (
	"math"

	gops "github.com/shirou/gopsutil/v4/process"
)

// descendants walks the process table below pid, breadth first. Processes
// that exit during the walk are skipped. Each entry carries the creation
// time read during the walk, which current compares against later.
func descendants(pid int) []*gops.Process {
	if pid <= 0 || pid > math.MaxInt32 {
		return nil
	}
	root, err := gops.NewProcess(int32(pid))
	if err != nil {
		return nil
	}

	var out []*gops.Process
	queue := []*gops.Process{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		children, err := p.Children()
		if err != nil {
			continue
		}
		for _, c := range children {
			if _, err := c.CreateTime(); err != nil {
				continue
			}
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

// current reports whether p's pid still names the process seen in the
// walk. A pid freed and reused since then has a different creation time.
func current(p *gops.Process) bool {
	running, err := p.IsRunning()
	return err == nil && running
}
