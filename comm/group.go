package comm

// NewGroup creates n linked communicators forming one group of ranks 0..n-1.
// Each member is driven by its own goroutine; collectives block until every
// member has entered the call.
//
// Every (sender, receiver) pair gets its own mailbox channel with capacity
// one, so a rank can always deposit its outgoing buffers without waiting for
// peers to start receiving. Channels stay balanced because every collective
// sends exactly one message per mailbox and drains exactly one.
func NewGroup(n int) ([]Communicator, error) {
	if n < 1 {
		return nil, ErrGroupSize
	}

	g := &group{
		n:      n,
		boxes:  make([][]chan []uint64, n),
		gather: make([][]chan int64, n),
	}
	for dst := 0; dst < n; dst++ {
		g.boxes[dst] = make([]chan []uint64, n)
		g.gather[dst] = make([]chan int64, n)
		for src := 0; src < n; src++ {
			g.boxes[dst][src] = make(chan []uint64, 1)
			g.gather[dst][src] = make(chan int64, 1)
		}
	}

	members := make([]Communicator, n)
	for r := 0; r < n; r++ {
		members[r] = &member{rank: r, group: g}
	}
	return members, nil
}

type group struct {
	n      int
	boxes  [][]chan []uint64 // boxes[dst][src]
	gather [][]chan int64    // gather[dst][src]
}

type member struct {
	rank  int
	group *group
}

// Rank implements Communicator.
func (m *member) Rank() int { return m.rank }

// Size implements Communicator.
func (m *member) Size() int { return m.group.n }

// AllToAll implements Communicator.
func (m *member) AllToAll(send [][]uint64) ([]uint64, error) {
	g := m.group
	if len(send) != g.n {
		return nil, &ErrBufferCount{Want: g.n, Got: len(send)}
	}

	// Deposit outgoing buffers. Copies decouple the receiver from any reuse
	// of the caller's slices.
	for dst := 0; dst < g.n; dst++ {
		buf := make([]uint64, len(send[dst]))
		copy(buf, send[dst])
		g.boxes[dst][m.rank] <- buf
	}

	// Drain inbound buffers in sender-rank order.
	var recv []uint64
	for src := 0; src < g.n; src++ {
		recv = append(recv, <-g.boxes[m.rank][src]...)
	}
	return recv, nil
}

// AllGather implements Communicator.
func (m *member) AllGather(v int64) ([]int64, error) {
	g := m.group
	for dst := 0; dst < g.n; dst++ {
		g.gather[dst][m.rank] <- v
	}
	out := make([]int64, g.n)
	for src := 0; src < g.n; src++ {
		out[src] = <-g.gather[m.rank][src]
	}
	return out, nil
}
