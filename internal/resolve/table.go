package resolve

import (
	"strings"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/source"
)

// TableResolver is a map-backed Resolver. The frontend (or a test)
// records resolutions keyed by path node; well-known library paths are
// minted lazily as defs under the crate root so repeated requests stay
// pointer-stable.
type TableResolver struct {
	defs    *def.Table
	strings *source.Interner

	resolutions map[ast.NodeID]Resolution
	imports     map[ast.NodeID]PerNS
	strPaths    map[string]Resolution
	pathDefs    map[string]def.DefIndex
}

func NewTableResolver(defs *def.Table, strings *source.Interner) *TableResolver {
	return &TableResolver{
		defs:        defs,
		strings:     strings,
		resolutions: make(map[ast.NodeID]Resolution),
		imports:     make(map[ast.NodeID]PerNS),
		strPaths:    make(map[string]Resolution),
		pathDefs:    make(map[string]def.DefIndex),
	}
}

// Record stores a resolution for a path node.
func (r *TableResolver) Record(node ast.NodeID, res Resolution) {
	r.resolutions[node] = res
}

// RecordImport stores per-namespace results for a use item.
func (r *TableResolver) RecordImport(node ast.NodeID, perNS PerNS) {
	r.imports[node] = perNS
}

func (r *TableResolver) GetResolution(node ast.NodeID) (Resolution, bool) {
	res, ok := r.resolutions[node]
	return res, ok
}

func (r *TableResolver) GetImportResolutions(node ast.NodeID) PerNS {
	return r.imports[node]
}

func (r *TableResolver) ResolveStrPath(span source.Span, crateRoot string, components []string, isValue bool) Resolution {
	key := crateRoot + "::" + strings.Join(components, "::")
	if isValue {
		key += "#v"
	}
	if res, ok := r.strPaths[key]; ok {
		return res
	}

	// Mint a def chain under the crate root for the external path,
	// sharing prefixes so `ops::Range` and `ops::RangeTo` agree on the
	// `ops` def.
	parent := def.CrateRootIndex
	prefix := crateRoot
	var last def.DefIndex
	for i, comp := range components {
		kind := def.DataTypeNs
		if isValue && i == len(components)-1 {
			kind = def.DataValueNs
		}
		prefix += "::" + comp
		pkey := prefix
		if kind == def.DataValueNs {
			pkey += "#v"
		}
		idx, ok := r.pathDefs[pkey]
		if !ok {
			idx = r.defs.CreateDefWithParent(parent, ast.NoNodeID, def.PathData{
				Kind: kind,
				Name: r.strings.Intern(comp),
			}, def.SpaceLow, span)
			r.pathDefs[pkey] = idx
		}
		parent = idx
		last = idx
	}
	if !last.IsValid() {
		res := ErrResolution()
		r.strPaths[key] = res
		return res
	}
	defKind := KindStruct
	if isValue {
		defKind = KindFn
	}
	res := Resolution{Kind: ResDef, DefKind: defKind, Def: last}
	r.strPaths[key] = res
	return res
}

// ResolveHirPath answers from the recorded maps: a use node with
// per-namespace entries is filtered by the requested namespace, any
// other recorded path resolves the same way in both.
func (r *TableResolver) ResolveHirPath(node ast.NodeID, isValue bool) Resolution {
	if per, ok := r.imports[node]; ok {
		if isValue {
			if per.Value != nil {
				return *per.Value
			}
		} else if per.Type != nil {
			return *per.Type
		}
		return ErrResolution()
	}
	if res, ok := r.resolutions[node]; ok {
		return res
	}
	return ErrResolution()
}

func (r *TableResolver) Definitions() *def.Table {
	return r.defs
}
