// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"time"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/internal/thread"
	"github.com/gogpu/framegraph/types"
)

// fenceTimeout bounds how long a ring slot's fence wait blocks before the
// device is assumed lost.
const fenceTimeout = 5 * time.Second

// Runner drives one Schedule through its ring of in-flight frames: wait for
// a slot's fence, record every node in topological order, submit, repeat
// (spec.md §4.5). Every device and queue call is serialized onto a single
// dedicated OS thread, since a Vulkan/GLES context may only be driven from
// the thread that created it.
type Runner struct {
	device   hal.Device
	queue    *hal.QueueGuard
	schedule *Schedule
	bus      *EventBus
	metrics  *Metrics

	renderThread *thread.Thread
	fences       []hal.Fence
	iteration    uint64
	dirty        bool
}

// NewRunner creates a Runner bound to schedule, allocating one fence per
// ring slot, pre-signaled so the first iteration doesn't block, and starts
// the dedicated render thread every RunOnce/SetSchedule call is serialized
// through.
func NewRunner(device hal.Device, queue *hal.QueueGuard, schedule *Schedule, bus *EventBus, metrics *Metrics) (*Runner, error) {
	r := &Runner{device: device, queue: queue, schedule: schedule, bus: bus, metrics: metrics, renderThread: thread.New()}
	fences, err := r.createFences(schedule.RingSize)
	if err != nil {
		return nil, err
	}
	r.fences = fences
	return r, nil
}

// Close stops the runner's render thread. Call once the runner is no longer
// used.
func (r *Runner) Close() { r.renderThread.Stop() }

func (r *Runner) createFences(ringSize uint32) ([]hal.Fence, error) {
	fences := make([]hal.Fence, ringSize)
	var buildErr error
	r.renderThread.CallVoid(func() {
		for i := range fences {
			f, err := r.device.CreateFence(true)
			if err != nil {
				buildErr = &ResourceError{ResourceName: "ring-fence", Err: err}
				return
			}
			fences[i] = f
		}
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return fences, nil
}

// Dirty reports whether the previous RunOnce observed StatusNeedsReconnect
// from any node; the caller must rebuild the Schedule and call SetSchedule
// before the next RunOnce.
func (r *Runner) Dirty() bool { return r.dirty }

// SetSchedule installs a freshly rebuilt Schedule, recreating ring fences
// if the ring size changed, and clears the dirty flag.
func (r *Runner) SetSchedule(schedule *Schedule) error {
	if uint32(len(r.fences)) != schedule.RingSize {
		fences, err := r.createFences(schedule.RingSize)
		if err != nil {
			return err
		}
		r.fences = fences
	}
	r.schedule = schedule
	r.dirty = false
	r.metrics.observeRebuild()
	return nil
}

// RunOnce records and submits exactly one iteration. On success it reports
// the Status flags raised across every node; if any node asked for
// StatusNeedsReconnect, Dirty() becomes true and the caller should rebuild
// before the next call.
func (r *Runner) RunOnce(ctx context.Context) (types.Status, error) {
	var combined types.Status
	var runErr error
	r.renderThread.CallVoid(func() {
		combined, runErr = r.runOnceOnThread(ctx)
	})
	return combined, runErr
}

// runOnceOnThread is RunOnce's body; it must only ever execute on
// r.renderThread.
func (r *Runner) runOnceOnThread(ctx context.Context) (types.Status, error) {
	s := r.schedule
	slot := RingSlot{Size: s.RingSize}.Of(r.iteration)

	waitStart := time.Now()
	if err := s.waitFence(r.fences[slot]); err != nil {
		return 0, err
	}
	r.metrics.observeRingWaitSeconds(time.Since(waitStart).Seconds())
	if err := r.fences[slot].Reset(); err != nil {
		return 0, &ResourceError{ResourceName: "ring-fence", Err: err}
	}

	r.bus.Send(Event{NodeType: ReservedGraph, Identifier: ReservedGraph, Name: "run_starting", Payload: r.iteration})

	encoder, err := r.device.NewCommandEncoder()
	if err != nil {
		return 0, &ResourceError{ResourceName: "command-encoder", Err: err}
	}

	var combined types.Status
	for _, id := range s.Order {
		cn, _ := s.Node(id)
		io, err := r.resolveIO(cn, slot)
		if err != nil {
			return combined, err
		}

		r.emitPreBarriers(encoder, io)

		descriptors := s.Descriptors[id]
		descriptors.Flush(slot)

		status, err := cn.node.Process(RunContext{RingSlot: slot, Iteration: r.iteration}, encoder, descriptors.Sets[slot], io)
		if err != nil {
			return combined, &NodeError{NodeID: id, Phase: "process", Err: err}
		}
		combined |= status
		if status.Has(types.StatusNeedsDescriptorUpdate) {
			descriptors.Flush(slot)
		}
		if status.Has(types.StatusNeedsReconnect) {
			r.dirty = true
		}
		for _, out := range cn.outputs {
			if out.Special != nil && out.Special.consumeReconnect() {
				combined |= types.StatusNeedsReconnect
				r.dirty = true
			}
		}

		r.emitPostBarriers(encoder, io)
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		return combined, &ResourceError{ResourceName: "command-buffer", Err: err}
	}

	r.bus.Send(Event{NodeType: ReservedGraph, Identifier: ReservedGraph, Name: "pre_submit", Payload: r.iteration})
	if err := r.queue.Submit(ctx, hal.SubmitInfo{CommandBuffer: cmdBuf, SignalFence: r.fences[slot]}); err != nil {
		return combined, err
	}
	r.bus.Send(Event{NodeType: ReservedGraph, Identifier: ReservedGraph, Name: "post_submit", Payload: r.iteration})

	r.iteration++
	r.metrics.observeRunIteration()
	return combined, nil
}

func (s *Schedule) waitFence(f hal.Fence) error {
	return f.Wait(uint64(fenceTimeout.Nanoseconds()))
}

// resolveIO gathers a node's resolved input and output resources for the
// given ring slot, respecting each input's delay.
func (r *Runner) resolveIO(cn *compiledNode, slot uint32) (IO, error) {
	io := IO{Inputs: make(map[string]*Resource), Outputs: make(map[string]*Resource)}
	for _, in := range cn.inputs {
		edge, bound := cn.inputEdge[in.Name]
		if !bound {
			continue
		}
		handle, ok := r.schedule.OutputHandle(edge.SrcNode, edge.SrcOutput)
		if !ok {
			return io, &ConnectorError{NodeID: cn.id, ConnectorName: in.Name, Err: ErrDanglingOutput}
		}
		res, ok := r.schedule.Resources.Get(handle, slot, r.schedule.RingSize, edge.Delay)
		if !ok {
			return io, &ConnectorError{NodeID: cn.id, ConnectorName: in.Name, Err: ErrDanglingOutput}
		}
		io.Inputs[in.Name] = res
	}
	for _, out := range cn.outputs {
		handle, ok := r.schedule.OutputHandle(cn.id, out.Name)
		if !ok {
			continue
		}
		res, ok := r.schedule.Resources.Get(handle, slot, r.schedule.RingSize, 0)
		if !ok {
			continue
		}
		io.Outputs[out.Name] = res
	}
	return io, nil
}

// desiredLayout picks the image layout a resource must be in given its
// combined access, used to decide whether a pre-process barrier is needed.
func desiredLayout(access types.Access) types.ImageLayout {
	switch {
	case access.IsWrite() && access&types.AccessShaderWrite != 0:
		return types.ImageLayoutGeneral
	case access&types.AccessTransferWrite != 0:
		return types.ImageLayoutTransferDst
	case access&types.AccessTransferRead != 0:
		return types.ImageLayoutTransferSrc
	case access&types.AccessColorAttachmentWrite != 0:
		return types.ImageLayoutColorAttachment
	default:
		return types.ImageLayoutShaderReadOnly
	}
}

// emitPreBarriers transitions every image resource touched by io into the
// layout its combined access requires, if it isn't already there
// (spec.md §5's per-node synchronization contract).
func (r *Runner) emitPreBarriers(encoder hal.CommandEncoder, io IO) {
	var barriers []hal.ImageBarrier
	visit := func(res *Resource) {
		if res == nil || res.Image == nil {
			return
		}
		want := desiredLayout(res.CombinedAccess)
		if res.CurrentLayout == want {
			return
		}
		barriers = append(barriers, hal.ImageBarrier{
			Image:     res.Image,
			SrcStage:  res.CombinedStage,
			DstStage:  res.CombinedStage,
			SrcAccess: res.CombinedAccess,
			DstAccess: res.CombinedAccess,
			OldLayout: res.CurrentLayout,
			NewLayout: want,
		})
		res.CurrentLayout = want
	}
	for _, res := range io.Inputs {
		visit(res)
	}
	for _, res := range io.Outputs {
		visit(res)
	}
	if len(barriers) > 0 {
		encoder.PipelineBarrier(barriers, nil)
	}
}

// emitPostBarriers is the symmetric hook for kinds that require a barrier
// only after dispatch (acceleration-structure builds); the frame graph's
// image/buffer barriers are all emitted pre-dispatch, so this is currently
// a no-op reserved for that future kind-specific behavior.
func (r *Runner) emitPostBarriers(encoder hal.CommandEncoder, io IO) {}
