package capture

import "testing"

func TestLocalAddrReturnsUsableResult(t *testing.T) {
	addr, err := LocalAddr(false)
	if err != nil {
		var want *ErrNoSuitableInterface
		if !asNoSuitableInterface(err, &want) {
			t.Fatalf("unexpected error type: %v", err)
		}
		return
	}
	if !addr.IsValid() || addr.IsLoopback() {
		t.Errorf("LocalAddr returned unusable address: %v", addr)
	}
}

func asNoSuitableInterface(err error, target **ErrNoSuitableInterface) bool {
	e, ok := err.(*ErrNoSuitableInterface)
	if !ok {
		return false
	}
	*target = e
	return true
}
