package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Internal invariant violations (compiler bugs, not user input).
	IceInfo                Code = 1000
	IceOwnerRealloc        Code = 1001
	IceOwnerNotAllocated   Code = 1002
	IceOwnerCounterShrank  Code = 1003
	IceMissingDefForOwner  Code = 1004
	IceHirIDReused         Code = 1005
	IceLockedOwnerWrite    Code = 1006
	IceScopeImbalance      Code = 1007
	IceFreshIDOverflow     Code = 1008

	// Lowering.
	LowInfo                   Code = 3000
	LowUnresolvedLabel        Code = 3001
	LowInclusiveRangeNoEnd    Code = 3002
	LowBreakOutsideLoop       Code = 3003
	LowBreakInLoopCondition   Code = 3004
	LowBareTraitObject        Code = 3005
	LowElidedLifetimeDeprecated Code = 3006
	LowParenGenericArgs       Code = 3007
	LowUnresolvedPath         Code = 3008
	LowMaybeBoundMisplaced    Code = 3009
	LowImplTraitDisallowed    Code = 3010

	// Collection.
	ColInfo                 Code = 4000
	ColPlaceholderType      Code = 4001
	ColDuplicateField       Code = 4002
	ColDiscriminantOverflow Code = 4003
	ColBadAttrArgs          Code = 4004
	ColSimdFfi              Code = 4005
	ColLinkNameOrdinal      Code = 4006

	// Type/predicate queries.
	TyInfo            Code = 5000
	TyCyclicSuperTrait Code = 5001
	TyCyclicQuery      Code = 5002
	TyGatArgsUnsupported Code = 5003

	// MIR validation.
	MirInfo               Code = 6000
	MirUnterminatedBlock  Code = 6001
	MirBadTarget          Code = 6002
	MirSwitchArity        Code = 6003
	MirBadLocal           Code = 6004
	MirPhaseRegression    Code = 6005
)

func (c Code) String() string {
	return fmt.Sprintf("R%04d", uint16(c))
}

// IsInternal reports whether the code marks a compiler bug rather than a
// problem with user input.
func (c Code) IsInternal() bool {
	return c >= IceInfo && c < LowInfo
}
