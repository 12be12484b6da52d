package domain

import "github.com/mohae/deepcopy"

func clone(v Values) Values {
	if len(v) == 0 {
		return Values{}
	}
	return deepcopy.Copy(v).(Values)
}

func cloneValue(v any) any {
	return deepcopy.Copy(v)
}
