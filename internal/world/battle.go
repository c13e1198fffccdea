package world

// Battle is the tactical combat collaborator. While one is set on the
// state the city timeline is suspended and only the battle advances.
type Battle interface {
	Init(s *State)
	Update(s *State, ticks uint)
	Finish(s *State)
	Exit(s *State)
}
