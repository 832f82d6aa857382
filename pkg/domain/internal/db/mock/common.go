package mock

// CallLog records arguments which a mock method is called with.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}
