package utils

// TotalPages is ceil(total/size); zero elements means zero pages.
func TotalPages(total int64, size int) int64 {
	if total <= 0 || size <= 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}
