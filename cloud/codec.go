package cloud

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-openapi/strfmt"
	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

// encodeTaskDef renders the wire form of a task submission. Only the fields
// the client owns go out; status, timestamps and results are assigned by the
// service.
func encodeTaskDef(td *core.TaskData) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("device_id")
	e.Str(td.DeviceID)
	e.FieldStart("program")
	e.Str(td.Program)
	e.FieldStart("shots")
	e.Int(td.Shots)
	e.FieldStart("task_type")
	e.Str(td.TaskType)
	if td.DisableRewiring {
		e.FieldStart("disable_rewiring")
		e.Bool(true)
	}
	if td.ClientToken != "" {
		e.FieldStart("client_token")
		e.Str(td.ClientToken)
	}
	if len(td.Tags) > 0 {
		e.FieldStart("tags")
		e.ObjStart()
		for k, v := range td.Tags {
			e.FieldStart(k)
			e.Str(v)
		}
		e.ObjEnd()
	}
	e.ObjEnd()
	return e.Bytes()
}

type createResponse struct {
	taskID string
	status core.Status
}

func decodeCreateResponse(data []byte) (*createResponse, error) {
	res := &createResponse{status: core.CREATED}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "task_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			res.taskID = v
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return err
			}
			res.status = toStatus(v)
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode create response")
	}
	if res.taskID == "" {
		return nil, fmt.Errorf("create response has no task_id")
	}
	return res, nil
}

func decodeTaskDef(data []byte) (*core.TaskData, error) {
	td := core.NewTaskData()
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "task_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.ID = v
			return nil
		case "device_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.DeviceID = v
			return nil
		case "program":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.Program = v
			return nil
		case "shots":
			v, err := d.Int()
			if err != nil {
				return err
			}
			td.Shots = v
			return nil
		case "disable_rewiring":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			td.DisableRewiring = v
			return nil
		case "task_type":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.TaskType = v
			return nil
		case "client_token":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.ClientToken = v
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return err
			}
			td.Status = toStatus(v)
			return nil
		case "tags":
			return d.Obj(func(d *jx.Decoder, k string) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				td.Tags[k] = v
				return nil
			})
		case "created_at":
			return decodeDateTime(d, &td.Created)
		case "ended_at":
			return decodeDateTime(d, &td.Ended)
		case "result":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return decodeResult(d, td.Result)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode task def")
	}
	return td, nil
}

func decodeResult(d *jx.Decoder, r *core.Result) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "counts":
			return d.Obj(func(d *jx.Decoder, state string) error {
				v, err := d.UInt32()
				if err != nil {
					return err
				}
				r.Counts[state] = v
				return nil
			})
		case "values":
			return d.Arr(func(d *jx.Decoder) error {
				rv, err := decodeResultValue(d)
				if err != nil {
					return err
				}
				r.Values = append(r.Values, rv)
				return nil
			})
		case "message":
			v, err := d.Str()
			if err != nil {
				return err
			}
			r.Message = v
			return nil
		case "execution_time_ms":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			r.ExecutionTime = time.Duration(v) * time.Millisecond
			return nil
		case "billed_duration_ms":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			r.BilledDuration = time.Duration(v) * time.Millisecond
			return nil
		default:
			return d.Skip()
		}
	})
}

func decodeResultValue(d *jx.Decoder) (core.ResultValue, error) {
	rv := core.ResultValue{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "type":
			v, err := d.Str()
			if err != nil {
				return err
			}
			rv.Type = v
			return nil
		case "observable":
			v, err := d.Str()
			if err != nil {
				return err
			}
			rv.Observable = v
			return nil
		case "targets":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Int()
				if err != nil {
					return err
				}
				rv.Targets = append(rv.Targets, v)
				return nil
			})
		case "states":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				rv.States = append(rv.States, v)
				return nil
			})
		case "value":
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			rv.Value = append([]byte{}, raw...)
			return nil
		default:
			return d.Skip()
		}
	})
	return rv, err
}

func decodeDateTime(d *jx.Decoder, out *strfmt.DateTime) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return err
	}
	parsed, err := strfmt.ParseDateTime(v)
	if err != nil {
		return err
	}
	*out = parsed
	return nil
}

func decodeDeviceList(data []byte) ([]*core.DeviceInfo, error) {
	devices := []*core.DeviceInfo{}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "devices" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			di, err := decodeDeviceInfo(raw)
			if err != nil {
				return err
			}
			devices = append(devices, di)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode device list")
	}
	return devices, nil
}

func decodeDeviceInfo(data []byte) (*core.DeviceInfo, error) {
	di := &core.DeviceInfo{}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "device_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.DeviceID = v
			return nil
		case "device_name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.DeviceName = v
			return nil
		case "provider_name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.ProviderName = v
			return nil
		case "paradigm":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.Paradigm = v
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.Status = toDeviceStatus(v)
			return nil
		case "max_qubits":
			v, err := d.Int()
			if err != nil {
				return err
			}
			di.MaxQubits = v
			return nil
		case "max_shots":
			v, err := d.Int()
			if err != nil {
				return err
			}
			di.MaxShots = v
			return nil
		case "native_gates":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				di.NativeGates = append(di.NativeGates, v)
				return nil
			})
		case "supported_pragmas":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				di.SupportedPragmas = append(di.SupportedPragmas, v)
				return nil
			})
		case "supported_result_types":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				di.SupportedResultTypes = append(di.SupportedResultTypes, v)
				return nil
			})
		case "connectivity":
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			di.ConnectivitySpecJson = string(raw)
			return nil
		case "pricing":
			return d.Obj(func(d *jx.Decoder, k string) error {
				v, err := d.Float64()
				if err != nil {
					return err
				}
				switch k {
				case "per_task":
					di.Pricing.PerTask = v
				case "per_shot":
					di.Pricing.PerShot = v
				case "per_minute":
					di.Pricing.PerMinute = v
				}
				return nil
			})
		case "calibrated_at":
			v, err := d.Str()
			if err != nil {
				return err
			}
			di.CalibratedAt = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode device info")
	}
	if di.DeviceID == "" {
		return nil, fmt.Errorf("device info has no device_id")
	}
	return di, nil
}

// decodeErrorMessage pulls the message out of an error payload. Anything
// unparsable is returned as-is so the caller never loses the body.
func decodeErrorMessage(data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		msg = v
		return nil
	})
	if err != nil || msg == "" {
		return string(data)
	}
	return msg
}

// toStatus maps a wire status to the local enum. An unknown value keeps the
// task in RUNNING so polling continues until the retry budget runs out.
func toStatus(s string) core.Status {
	st, err := core.ToStatus(s)
	if err != nil {
		zap.L().Warn(fmt.Sprintf("unknown task status %q from the service, treating as running", s))
		return core.RUNNING
	}
	return st
}

func toDeviceStatus(s string) core.DeviceStatus {
	switch s {
	case "available", "online":
		return core.Available
	case "unavailable", "offline":
		return core.Unavailable
	case "retired":
		return core.Retired
	default:
		zap.L().Warn(fmt.Sprintf("unknown device status %q from the service", s))
		return core.Unavailable
	}
}
