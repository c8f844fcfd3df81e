package jwtcodec

import (
	"testing"
)

func BenchmarkEncode(b *testing.B) {
	codec := mustCodec(b)
	header := mustJSON(b, `{"alg":"HS256","typ":"JWT"}`)
	payload := mustJSON(b, `{"sub":"1234567890","name":"John Doe","iat":1516239022}`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := codec.Encode(header, payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	codec := mustCodec(b)
	token := jwtioHeader + "." + jwtioPayload + "." + jwtioSig

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := codec.Decode(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeText(b *testing.B) {
	codec := mustCodec(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := codec.EncodeText(`{alg: 'HS256', typ: 'JWT'}`, `{sub: '1234567890', name: 'John Doe'}`); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeParallel(b *testing.B) {
	codec := mustCodec(b)
	token := jwtioHeader + "." + jwtioPayload + "." + jwtioSig

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := codec.Decode(token); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
