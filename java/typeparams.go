package java

// typeContext is the scope a signature is resolved in: a class, and for
// method signatures the code unit declaring further type parameters.
type typeContext struct {
	class    *Class
	codeUnit *CodeUnit
	where    string
}

// at returns a copy of ctx reporting problems against site.
func (ctx typeContext) at(site string) typeContext {
	ctx.where = site
	return ctx
}

func (ctx typeContext) site() string {
	switch {
	case ctx.where != "":
		return ctx.where
	case ctx.codeUnit != nil:
		return ctx.codeUnit.FullName()
	}
	return ctx.class.name
}

type stubVariableKey struct {
	scope *Class
	name  string
}

// maxScopeDepth bounds the walk outwards through enclosing scopes; a chain
// this deep only occurs when enclosing class attributes form a cycle.
const maxScopeDepth = 256

// lookupTypeVariable finds the declaration of a type variable, searching
// the code unit, then its class, then outwards through enclosing code units
// and classes. When the chain leaves the imported classes the variable is
// replaced by a stub with unknown bounds. A top-level imported class that
// still has no declaration is inconsistent input.
func (b *builder) lookupTypeVariable(name string, ctx typeContext) (*TypeVariable, error) {
	c, cu := ctx.class, ctx.codeUnit
	for step := 0; c != nil && step < maxScopeDepth; step++ {
		if cu != nil {
			if tv := findTypeVariable(cu.typeParameters, name); tv != nil {
				return tv, nil
			}
		}
		if tv := findTypeVariable(c.typeParameters, name); tv != nil {
			return tv, nil
		}
		if c.stub {
			return b.stubTypeVariable(name, c, ctx), nil
		}
		switch {
		case c.enclosingCodeUnit != nil:
			cu = c.enclosingCodeUnit
			c = cu.owner
		case c.enclosingMethodRef != nil:
			return b.stubTypeVariable(name, c, ctx), nil
		case c.enclosingClass != nil:
			cu = nil
			c = c.enclosingClass
		default:
			return nil, &InconsistentTypeParameterError{Name: name, Site: ctx.site()}
		}
	}
	return nil, &InconsistentTypeParameterError{Name: name, Site: ctx.site()}
}

func findTypeVariable(params []*TypeVariable, name string) *TypeVariable {
	for _, tv := range params {
		if tv.name == name {
			return tv
		}
	}
	return nil
}

// stubTypeVariable returns the stub standing in for name in scope, creating
// it on first use.
func (b *builder) stubTypeVariable(name string, scope *Class, ctx typeContext) *TypeVariable {
	key := stubVariableKey{scope: scope, name: name}
	if tv, ok := b.stubVariables[key]; ok {
		return tv
	}
	log.Debugf("type variable %s in %s has no visible declaration, bounds unknown", name, ctx.site())
	tv := &TypeVariable{name: name, boundsUnknown: true, object: b.object(b.maxDepth)}
	b.stubVariables[key] = tv
	b.classes.report.UnknownBoundVariables = append(b.classes.report.UnknownBoundVariables,
		UnknownBoundVariable{Name: name, Site: ctx.site()})
	return tv
}
