package gesture_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

var _ = Describe("Classify", func() {
	cfg := gesture.DefaultConfig()

	It("mirrors and scales the index fingertip", func() {
		f, err := gesture.Classify(hand.Synthesize(0.2, 0.7, false, false), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.X).To(BeNumerically("~", 9.0, 1e-9))
		Expect(f.Y).To(BeNumerically("~", -4.0, 1e-9))
	})

	It("centres the pointer for a centred hand", func() {
		f, err := gesture.Classify(hand.Synthesize(0.5, 0.5, false, false), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.X).To(BeZero())
		Expect(f.Y).To(BeZero())
	})

	DescribeTable("gesture flags",
		func(curl, pinch bool) {
			f, err := gesture.Classify(hand.Synthesize(0.5, 0.5, curl, pinch), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Grasp).To(Equal(curl))
			Expect(f.Pinch).To(Equal(pinch))
		},
		Entry("open hand", false, false),
		Entry("curled index", true, false),
		Entry("pinch", false, true),
		Entry("curl and pinch", true, true),
	)

	It("rejects short landmark sets", func() {
		_, err := gesture.Classify(make([]hand.Landmark, 8), cfg)
		Expect(err).To(MatchError(dynamo.ErrMalformedLandmarks))
	})
})

var _ = Describe("Classifier", func() {
	var (
		state *scene.State
		c     *gesture.Classifier
		t0    time.Time
		seen  []shape.Template
	)

	frame := func(at time.Duration, curl, pinch bool) hand.Result {
		return hand.Result{
			Hands: [][]hand.Landmark{hand.Synthesize(0.3, 0.6, curl, pinch)},
			At:    t0.Add(at),
		}
	}

	BeforeEach(func() {
		t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		state = scene.New(shape.Sphere)
		c = gesture.New(state, gesture.DefaultConfig())
		seen = nil
		c.OnSwitch(func(t shape.Template) { seen = append(seen, t) })
	})

	It("accepts the first pinch and announces the new template", func() {
		u, err := c.OnHandFrame(frame(0, false, true))
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Switched).To(BeTrue())
		Expect(u.Template).To(Equal(shape.Heart))
		Expect(seen).To(Equal([]shape.Template{shape.Heart}))
		Expect(gesture.Banner(u.Template)).To(Equal("Current Template: HEART"))
	})

	It("debounces pinches inside the cooldown", func() {
		c.OnHandFrame(frame(0, false, true))
		u, _ := c.OnHandFrame(frame(500*time.Millisecond, false, true))
		Expect(u.Switched).To(BeFalse())
		Expect(state.Template).To(Equal(shape.Heart))
		Expect(state.Switches).To(Equal(1))
		Expect(state.LastSwitch).To(Equal(t0))
	})

	It("accepts a pinch after the cooldown", func() {
		c.OnHandFrame(frame(0, false, true))
		u, _ := c.OnHandFrame(frame(1100*time.Millisecond, false, true))
		Expect(u.Switched).To(BeTrue())
		Expect(state.Template).To(Equal(shape.Saturn))
		Expect(state.Switches).To(Equal(2))
	})

	It("cycles back to sphere after four accepted pinches", func() {
		for i := 0; i < 4; i++ {
			c.OnHandFrame(frame(time.Duration(i)*1500*time.Millisecond, false, true))
		}
		Expect(state.Template).To(Equal(shape.Sphere))
		Expect(seen).To(Equal([]shape.Template{shape.Heart, shape.Saturn, shape.Fireworks, shape.Sphere}))
	})

	It("tracks the pointer and grasp flag", func() {
		u, err := c.OnHandFrame(frame(0, true, false))
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Applied).To(BeTrue())
		Expect(state.Grasping).To(BeTrue())
		Expect(state.X).To(BeNumerically("~", 6.0, 1e-9))
		Expect(state.Y).To(BeNumerically("~", -2.0, 1e-9))

		c.OnHandFrame(frame(10*time.Millisecond, false, false))
		Expect(state.Grasping).To(BeFalse())
	})

	It("freezes when no hand is visible", func() {
		c.OnHandFrame(frame(0, true, true))
		before := *state

		u, err := c.OnHandFrame(hand.Result{At: t0.Add(5 * time.Second)})
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Applied).To(BeFalse())
		Expect(*state).To(Equal(before))
	})

	It("ignores every hand after the first", func() {
		res := hand.Result{
			Hands: [][]hand.Landmark{
				hand.Synthesize(0.5, 0.5, false, false),
				hand.Synthesize(0.1, 0.1, true, true),
			},
			At: t0,
		}
		c.OnHandFrame(res)
		Expect(state.Grasping).To(BeFalse())
		Expect(state.Template).To(Equal(shape.Sphere))
	})

	It("leaves the state alone on malformed frames", func() {
		c.OnHandFrame(frame(0, true, false))
		before := *state

		_, err := c.OnHandFrame(hand.Result{Hands: [][]hand.Landmark{make([]hand.Landmark, 5)}, At: t0})
		Expect(err).To(MatchError(dynamo.ErrMalformedLandmarks))
		Expect(*state).To(Equal(before))
	})
})
