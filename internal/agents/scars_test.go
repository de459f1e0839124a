package agents

import (
	"math"
	"math/rand"
	"testing"
)

func experiencedScar(my Move, outcome Outcome, gen int) Scar {
	other := Cooperate
	if outcome == OutcomeHarmed {
		other = Defect
	}
	return Scar{
		OtherStrategy: other,
		MyResponse:    my,
		Outcome:       outcome,
		Weight:        ExperienceWeight(outcome),
		Source:        SourceExperienced,
		Generation:    gen,
	}
}

func TestLedgerAppendCap(t *testing.T) {
	var l Ledger
	for i := 0; i < MaxScars+25; i++ {
		l.Append(experiencedScar(Cooperate, OutcomeThrived, i))
	}
	if l.Len() != MaxScars {
		t.Fatalf("ledger should cap at %d, got %d", MaxScars, l.Len())
	}
	// The oldest entries fall off: the first survivor was earned at gen 25.
	if got := l.Entries[0].Generation; got != 25 {
		t.Fatalf("oldest surviving scar: want generation 25, got %d", got)
	}
}

func TestEffectiveWeightFade(t *testing.T) {
	s := experiencedScar(Cooperate, OutcomeThrived, 10)

	if got := s.EffectiveWeight(10, DecayRate); got != WeightThrived {
		t.Fatalf("fresh scar should carry full weight, got %v", got)
	}
	// Readers before the scar existed see the recorded weight unchanged.
	if got := s.EffectiveWeight(5, DecayRate); got != WeightThrived {
		t.Fatalf("pre-dated read should not amplify, got %v", got)
	}

	one := s.EffectiveWeight(11, DecayRate)
	want := WeightThrived * (1 - DecayRate)
	if math.Abs(one-want) > 1e-12 {
		t.Fatalf("one generation of fade: want %v, got %v", want, one)
	}

	hundred := s.EffectiveWeight(110, DecayRate)
	if hundred >= one {
		t.Fatalf("fade must be monotonic: %v after 100 gens vs %v after 1", hundred, one)
	}
	// The recorded weight never changes.
	if s.Weight != WeightThrived {
		t.Fatalf("fade must not rewrite history: recorded weight %v", s.Weight)
	}
}

func TestCooperationTendencyFreshAgent(t *testing.T) {
	a := &Agent{Trust: 0.5, Alive: true}
	if got := a.CooperationTendency(0, DecayRate); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("fresh agent with neutral trust should sit at 0.5, got %v", got)
	}
}

func TestCooperationTendencyFollowsEvidence(t *testing.T) {
	coop := &Agent{Trust: 0.5, Alive: true}
	for i := 0; i < 10; i++ {
		coop.Scars.Append(experiencedScar(Cooperate, OutcomeThrived, i))
	}
	defector := &Agent{Trust: 0.5, Alive: true}
	for i := 0; i < 10; i++ {
		defector.Scars.Append(experiencedScar(Defect, OutcomeThrived, i))
	}

	ct := coop.CooperationTendency(10, DecayRate)
	dt := defector.CooperationTendency(10, DecayRate)
	if ct <= 0.5 || dt >= 0.5 {
		t.Fatalf("evidence should pull the tendency: cooperator %v, defector %v", ct, dt)
	}
	if ct <= dt {
		t.Fatalf("cooperative history must beat defecting history: %v vs %v", ct, dt)
	}
}

func TestCooperationTendencyIgnoresHarm(t *testing.T) {
	// Being exploited while cooperating is not evidence for anything.
	a := &Agent{Trust: 0.5, Alive: true}
	for i := 0; i < 10; i++ {
		a.Scars.Append(experiencedScar(Cooperate, OutcomeHarmed, i))
	}
	if got := a.CooperationTendency(10, DecayRate); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("harmed scars must not count as evidence, got %v", got)
	}
}

func TestCooperationTendencyEvidenceFloor(t *testing.T) {
	// A scar faded below the floor stops counting.
	a := &Agent{Trust: 0.5, Alive: true}
	a.Scars.Append(experiencedScar(Defect, OutcomeNeutral, 0))

	early := a.CooperationTendency(1, DecayRate)
	if early >= 0.5 {
		t.Fatalf("fresh defect evidence should drag the tendency down, got %v", early)
	}
	// 0.5 * 0.99^age <= 0.1 needs age > 160.
	late := a.CooperationTendency(200, DecayRate)
	if math.Abs(late-0.5) > 1e-12 {
		t.Fatalf("faded evidence should stop counting, got %v", late)
	}
}

func TestCooperationTendencyCorrupted(t *testing.T) {
	a := &Agent{Trust: 0.9, Corrupted: true, Alive: true}
	for i := 0; i < 10; i++ {
		a.Scars.Append(experiencedScar(Cooperate, OutcomeThrived, i))
	}
	if got := a.CooperationTendency(10, DecayRate); got != CorruptedTendency {
		t.Fatalf("corrupted agents are pinned at %v, got %v", CorruptedTendency, got)
	}
}

func TestRecentDefections(t *testing.T) {
	var l Ledger
	for i := 0; i < 6; i++ {
		l.Append(experiencedScar(Defect, OutcomeThrived, i))
	}
	for i := 6; i < 10; i++ {
		l.Append(experiencedScar(Cooperate, OutcomeThrived, i))
	}

	if got := l.RecentDefections(4); got != 0 {
		t.Fatalf("last 4 entries are cooperations, got %d defections", got)
	}
	if got := l.RecentDefections(5); got != 1 {
		t.Fatalf("last 5 entries hold 1 defection, got %d", got)
	}
	if got := l.RecentDefections(100); got != 6 {
		t.Fatalf("window larger than ledger counts everything: want 6, got %d", got)
	}
}

func TestForget(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var l Ledger
	for i := 0; i < 50; i++ {
		l.Append(experiencedScar(Cooperate, OutcomeThrived, i))
	}

	removed := l.Forget(0.5, rng)
	if removed == 0 || removed == 50 {
		t.Fatalf("half-strength wipe should erase some but not all, removed %d", removed)
	}
	if l.Len() != 50-removed {
		t.Fatalf("ledger length %d inconsistent with %d removals", l.Len(), removed)
	}

	before := l.Len()
	if got := l.Forget(1.0, rng); got != before || l.Len() != 0 {
		t.Fatalf("full wipe must erase everything: removed %d of %d, %d left", got, before, l.Len())
	}
	if got := l.Forget(0.5, rng); got != 0 {
		t.Fatalf("wiping an empty ledger removed %d", got)
	}
}

func TestAwakenMonotonicAndPromotes(t *testing.T) {
	a := &Agent{Role: RoleNaive, Alive: true}
	if !a.Awaken() {
		t.Fatal("first awakening should report true")
	}
	if !a.Awakened || a.Role != RoleHumanTeacher {
		t.Fatalf("awakening should promote into the teacher network, got role %v", a.Role)
	}
	if a.Awaken() {
		t.Fatal("second awakening must be a no-op")
	}

	b := &Agent{Role: RoleBridge, Alive: true}
	b.Awaken()
	if b.Role != RoleBridge {
		t.Fatalf("bridges keep their role on awakening, got %v", b.Role)
	}
}

func TestAdjustTrustClamps(t *testing.T) {
	a := &Agent{Trust: 0.95, Alive: true}
	a.AdjustTrust(0.2)
	if a.Trust != 1 {
		t.Fatalf("trust must clamp at 1, got %v", a.Trust)
	}
	a.AdjustTrust(-5)
	if a.Trust != 0 {
		t.Fatalf("trust must clamp at 0, got %v", a.Trust)
	}
}
