package xmcast

import (
	"database/sql/driver"
	"fmt"
)

// MarshalText 实现 [encoding.TextMarshaler]，输出 "g1.g2.g3.g4"。
// 零值 Addr{} 输出空字节切片。
//
// JSON 与 YAML 编码器会经由此方法把 Addr 编码为字符串。
func (a Addr) MarshalText() ([]byte, error) {
	if a == (Addr{}) {
		return []byte{}, nil
	}
	return a.appendTo(make([]byte, 0, 15)), nil
}

// UnmarshalText 实现 [encoding.TextUnmarshaler]。
// 输入必须是多播范围内的点分四段地址；空输入设置为零值。
func (a *Addr) UnmarshalText(text []byte) error {
	if a == nil {
		return ErrNilReceiver
	}
	if len(text) == 0 {
		*a = Addr{}
		return nil
	}
	parsed, err := ParseAddr(string(text))
	if err != nil {
		return err
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value 实现 [driver.Valuer]。零值返回 nil（SQL NULL）。
func (a Addr) Value() (driver.Value, error) {
	if a == (Addr{}) {
		return nil, nil
	}
	return a.String(), nil
}

// Scan 实现 [database/sql.Scanner]。
// 支持 string、[]byte（文本或 4 字节二进制）、int64（大端 uint32）和 nil。
func (a *Addr) Scan(src any) error {
	if a == nil {
		return ErrNilReceiver
	}
	switch v := src.(type) {
	case nil:
		*a = Addr{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		// 4 字节视为 BINARY(4) 列中的原始地址；文本地址最短 7 字符，不会冲突。
		if len(v) == 4 {
			parsed := AddrFrom4([4]byte(v))
			if err := parsed.Validate(); err != nil {
				return err
			}
			*a = parsed
			return nil
		}
		return a.UnmarshalText(v)
	case int64:
		if v < 0 || v > 0xFFFFFFFF {
			return fmt.Errorf("%w: integer %d out of IPv4 range", ErrMalformedAddress, v)
		}
		parsed := AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		if err := parsed.Validate(); err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrMalformedAddress, src)
	}
}

// MarshalText 实现 [encoding.TextMarshaler]，输出 [URI.String] 的结果。
func (u *URI) MarshalText() ([]byte, error) {
	if u == nil {
		return []byte{}, nil
	}
	return []byte(u.String()), nil
}

// UnmarshalText 实现 [encoding.TextUnmarshaler]，运行完整的校验流水线。
func (u *URI) UnmarshalText(text []byte) error {
	if u == nil {
		return ErrNilReceiver
	}
	parsed, err := Create(string(text))
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

// Value 实现 [driver.Valuer]。
func (u *URI) Value() (driver.Value, error) {
	if u == nil {
		return nil, nil
	}
	return u.String(), nil
}

// Scan 实现 [database/sql.Scanner]，支持 string 与 []byte。
func (u *URI) Scan(src any) error {
	if u == nil {
		return ErrNilReceiver
	}
	switch v := src.(type) {
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidSyntax, src)
	}
}
