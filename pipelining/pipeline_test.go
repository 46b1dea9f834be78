package pipelining

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

type pipelineItem struct {
	taskID string
}

func (p pipelineItem) TaskID() string {
	return p.taskID
}

var _ = Describe("Pipeline", func() {
	var (
		mockCtrl           *gomock.Controller
		postPipelineBuffer *MockBuffer
		pipeline           Pipeline
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		postPipelineBuffer = NewMockBuffer(mockCtrl)
		pipeline = MakeBuilder().
			WithPipelineWidth(1).
			WithNumStage(100).
			WithCyclePerStage(2).
			WithPostPipelineBuffer(postPipelineBuffer).
			Build("Pipeline")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should process items in pipeline", func() {
		item1 := pipelineItem{taskID: "1"}
		item2 := pipelineItem{taskID: "2"}

		Expect(pipeline.CanAccept()).To(BeTrue())

		pipeline.Accept(item1)
		Expect(pipeline.CanAccept()).To(BeFalse())
		Expect(pipeline.NumInFlight()).To(Equal(1))

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeFalse())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(item2)

		for i := 2; i < 199; i++ {
			Expect(pipeline.Tick()).To(BeTrue())
		}

		postPipelineBuffer.EXPECT().CanPush().Return(true)
		postPipelineBuffer.EXPECT().Push(item1)
		Expect(pipeline.Tick()).To(BeTrue())

		Expect(pipeline.Tick()).To(BeTrue())

		postPipelineBuffer.EXPECT().CanPush().Return(false)
		Expect(pipeline.Tick()).To(BeFalse())

		postPipelineBuffer.EXPECT().CanPush().Return(true)
		postPipelineBuffer.EXPECT().Push(item2)
		Expect(pipeline.Tick()).To(BeTrue())

		Expect(pipeline.Tick()).To(BeFalse())
		Expect(pipeline.NumInFlight()).To(Equal(0))
	})

	It("should notify hooks when items enter and leave", func() {
		var positions []*sim.HookPos
		pipeline.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		pipeline.Accept(pipelineItem{taskID: "1"})

		postPipelineBuffer.EXPECT().CanPush().Return(true)
		postPipelineBuffer.EXPECT().Push(gomock.Any())

		for i := 0; i < 200; i++ {
			pipeline.Tick()
		}

		Expect(positions).To(Equal([]*sim.HookPos{
			HookPosPipelineAccept, HookPosPipelineRetire,
		}))
	})
})

var _ = Describe("Zero-Stage Pipeline", func() {
	var (
		mockCtrl           *gomock.Controller
		postPipelineBuffer *MockBuffer
		pipeline           Pipeline
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		postPipelineBuffer = NewMockBuffer(mockCtrl)
		pipeline = MakeBuilder().
			WithPipelineWidth(1).
			WithNumStage(0).
			WithCyclePerStage(2).
			WithPostPipelineBuffer(postPipelineBuffer).
			Build("Pipeline")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not accept if post buffer is full", func() {
		postPipelineBuffer.EXPECT().CanPush().Return(false)

		Expect(pipeline.CanAccept()).To(BeFalse())
	})

	It("should forward to post buffer directly", func() {
		item1 := pipelineItem{taskID: "1"}

		postPipelineBuffer.EXPECT().CanPush().Return(true)
		postPipelineBuffer.EXPECT().Push(item1)

		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(item1)
	})
})
