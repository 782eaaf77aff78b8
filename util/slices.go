package util

// ConvertEach implements the functional map operation, under a different
// name to avoid confusion with Go's map type.
func ConvertEach[T, U any](slice []T, convert func(T) U) []U {
	if slice == nil {
		return nil
	}

	res := make([]U, 0, len(slice))

	for _, t := range slice {
		res = append(res, convert(t))
	}

	return res
}
