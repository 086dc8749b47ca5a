package parserdata

// SetOp is UNION, INTERSECT or EXCEPT.
type SetOp string

const (
	Union     SetOp = "union"
	Intersect SetOp = "intersect"
	Except    SetOp = "except"
)

// SetOpData combines the results of two statements.
type SetOpData struct {
	op    SetOp
	left  Statement
	right Statement
}

func NewSetOpData(op SetOp, left, right Statement) *SetOpData {
	return &SetOpData{
		op:    op,
		left:  left,
		right: right,
	}
}

func (s *SetOpData) statement() {}

func (s *SetOpData) Op() SetOp {
	return s.op
}

func (s *SetOpData) Left() Statement {
	return s.left
}

func (s *SetOpData) Right() Statement {
	return s.right
}

func (s *SetOpData) String() string {
	return wrap(s.left) + " " + string(s.op) + " " + wrap(s.right)
}

func wrap(st Statement) string {
	if _, ok := st.(*SetOpData); ok {
		return "(" + st.String() + ")"
	}
	return st.String()
}
