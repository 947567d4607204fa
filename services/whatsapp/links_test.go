package wasvc

import "testing"

func TestLink(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		text  string
		want  string
	}{
		{name: "digits only", phone: "972501234567", text: "", want: "https://wa.me/972501234567"},
		{name: "formatted number", phone: "+972 50-123 4567", text: "", want: "https://wa.me/972501234567"},
		{name: "with text", phone: "972501234567", text: "hello there", want: "https://wa.me/972501234567?text=hello+there"},
		{name: "arabic text escaped", phone: "972501234567", text: "مرحبا", want: "https://wa.me/972501234567?text=%D9%85%D8%B1%D8%AD%D8%A8%D8%A7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Link(tt.phone, tt.text); got != tt.want {
				t.Errorf("Link() = %v, want %v", got, tt.want)
			}
		})
	}
}
