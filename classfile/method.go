package classfile

type MethodInfo struct {
	member
}

func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) *CodeAttribute {
	attr := m.GetAttribute(cp, "Code")
	if attr == nil {
		return nil
	}
	return attr.AsCode()
}

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

// ExceptionNames returns the internal names listed in the throws clause.
func (m *MethodInfo) ExceptionNames(cp ConstantPool) []string {
	attr := m.GetAttribute(cp, "Exceptions")
	if attr == nil {
		return nil
	}
	ex := attr.AsExceptions()
	if ex == nil {
		return nil
	}
	names := make([]string, 0, len(ex.ExceptionIndexTable))
	for _, idx := range ex.ExceptionIndexTable {
		names = append(names, cp.GetClassName(idx))
	}
	return names
}

// ParameterAnnotations returns per-parameter annotations from both the
// visible and invisible attributes.
func (m *MethodInfo) ParameterAnnotations() []ParameterAnnotationsAttribute {
	var result []ParameterAnnotationsAttribute
	for i := range m.Attributes {
		if pa := m.Attributes[i].AsParameterAnnotations(); pa != nil {
			result = append(result, *pa)
		}
	}
	return result
}
