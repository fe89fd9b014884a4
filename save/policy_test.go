package save

import "testing"

func TestPolicies(t *testing.T) {
	for _, testcase := range []struct {
		Policy  string
		Saved   string
		Running string
		Expect  bool
	}{
		{"exact", "1.2.0", "1.2.0", true},
		{"exact", "1.2.0", "1.2.1", false},
		{"exact", "1.2.0", "v1.2.0", false},
		{"", "1.2.0", "2.0.0", false},
		{"major", "1.2.0", "1.9.3", true},
		{"major", "v1.2.0", "1.0.0", true},
		{"major", "1.2.0", "2.0.0", false},
		{"major", "garbage", "1.0.0", false},
		{"major", "garbage", "garbage", true},
		{"minor", "1.2.0", "1.2.9", true},
		{"minor", "1.2.0", "1.3.0", false},
		{"not-newer", "1.2.0", "1.3.0", true},
		{"not-newer", "1.3.0", "1.2.0", false},
		{"not-newer", "1.2.0-beta", "1.2.0", true},
		{"not-newer", "", "1.2.0", false},
	} {
		policy, err := PolicyByName(testcase.Policy)
		if err != nil {
			t.Fatal(err)
		}
		if got := Check(policy, testcase.Saved, testcase.Running); got != testcase.Expect {
			t.Errorf("%s: Check(%q, %q) = %v, expect %v", testcase.Policy, testcase.Saved, testcase.Running, got, testcase.Expect)
		}
	}
}

func TestCheckAlwaysAcceptsSameVersion(t *testing.T) {
	never := VersionPolicyFunc(func(saved, running string) bool { return false })
	if !Check(never, "1.0.0", "1.0.0") {
		t.Error("same version must be compatible")
	}
	if Check(never, "1.0.0", "1.0.1") {
		t.Error("policy must be used for different versions")
	}
	if !Check(nil, "dev", "dev") || Check(nil, "dev", "1.0.0") {
		t.Error("nil policy must be exact match")
	}
}

func TestPolicyByNameUnknown(t *testing.T) {
	if _, err := PolicyByName("newest"); err == nil {
		t.Error("unknown policy must be error")
	}
}
