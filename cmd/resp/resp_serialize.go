// Provide serialization functions for compliance with the REdis Serialization Protocol
// specification, see: https://redis.io/docs/reference/protocol-spec/#resp-protocol-description
package resp

import (
	"bufio"
	"reflect"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// SimpleString is written as a status reply instead of a bulk string.
type SimpleString string

const OK = SimpleString("OK")

// NilArray is written as a null array (*-1).
type NilArray struct{}

// Serialize renders v as a single RESP value.
func Serialize(v any) (string, error) {
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	if err := Write(w, v); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", errors.Trace(err)
	}
	return sb.String(), nil
}

// Write encodes v onto w. The caller flushes.
func Write(w *bufio.Writer, v any) error {
	switch v := v.(type) {
	case nil:
		_, err := w.WriteString(SerializeNil())
		return err
	case NilArray:
		_, err := w.WriteString("*-1\r\n")
		return err
	case SimpleString:
		_, err := w.WriteString(SerializeSimpleStr(string(v)))
		return err
	case string:
		_, err := w.WriteString(SerializeStr(v))
		return err
	case int:
		_, err := w.WriteString(SerializeInt(v))
		return err
	case int64:
		_, err := w.WriteString(SerializeInt(int(v)))
		return err
	case bool:
		_, err := w.WriteString(SerializeBool(v))
		return err
	case error:
		_, err := w.WriteString(SerializeError(v))
		return err
	case []string:
		if _, err := w.WriteString(arrayHeader(RespArray, len(v))); err != nil {
			return err
		}
		for _, s := range v {
			if _, err := w.WriteString(SerializeStr(s)); err != nil {
				return err
			}
		}
		return nil
	}

	return writeReflect(w, v)
}

func writeReflect(w *bufio.Writer, v any) error {
	tp := reflect.TypeOf(v)
	switch tp.Kind() {
	case reflect.Struct:
		stc := reflect.ValueOf(v)
		if _, err := w.WriteString(arrayHeader(RespMap, stc.NumField())); err != nil {
			return err
		}
		for i := 0; i < stc.NumField(); i++ {
			if _, err := w.WriteString(SerializeStr(tp.Field(i).Name)); err != nil {
				return err
			}
			if err := Write(w, stc.Field(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		mp := reflect.ValueOf(v)
		if _, err := w.WriteString(arrayHeader(RespMap, mp.Len())); err != nil {
			return err
		}
		iter := mp.MapRange()
		for iter.Next() {
			if err := Write(w, iter.Key().Interface()); err != nil {
				return err
			}
			if err := Write(w, iter.Value().Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		arr := reflect.ValueOf(v)
		if _, err := w.WriteString(arrayHeader(RespArray, arr.Len())); err != nil {
			return err
		}
		for i := 0; i < arr.Len(); i++ {
			if err := Write(w, arr.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return errors.Errorf("value of type %s cannot be serialized", tp)
}

func arrayHeader(kind byte, n int) string {
	return string(kind) + strconv.Itoa(n) + "\r\n"
}

func SerializeNil() string {
	return "$-1\r\n"
}

func SerializeBool(b bool) string {
	if b {
		return "#t\r\n"
	}
	return "#f\r\n"
}

func SerializeSimpleStr(str string) string {
	return "+" + str + "\r\n"
}

func SerializeStr(str string) string {
	return "$" + strconv.Itoa(len(str)) + "\r\n" + str + "\r\n"
}

// SerializeError writes err as an error reply. Line breaks in the message
// would end the reply early, so they are replaced.
func SerializeError(err error) string {
	msg := strings.NewReplacer("\r", " ", "\n", " ").Replace(err.Error())
	return "-" + msg + "\r\n"
}

func SerializeInt(n int) string {
	return ":" + strconv.Itoa(n) + "\r\n"
}
